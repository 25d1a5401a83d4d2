//go:build !windows

package vault

func openPlatform(dir string) (Vault, error) {
	return OpenKeyfile(dir)
}
