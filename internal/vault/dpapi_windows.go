//go:build windows

package vault

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

const dpapiPrefix = "dp1:"

// dpapi seals secrets with the Windows Data Protection API under the current user.
type dpapi struct{}

func (dpapi) Name() string { return "dpapi" }

func (dpapi) Protect(plain string) Result {
	if plain == "" {
		return Result{}
	}
	out, err := cryptProtect([]byte(plain))
	if err != nil {
		return passthrough(plain, err)
	}
	return Result{Value: dpapiPrefix + base64.StdEncoding.EncodeToString(out)}
}

func (dpapi) Reveal(opaque string) Result {
	if opaque == "" {
		return Result{}
	}
	enc, ok := strings.CutPrefix(opaque, dpapiPrefix)
	if !ok {
		return passthrough(opaque, ErrNotSealed)
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return passthrough(opaque, fmt.Errorf("decode sealed value: %w", err))
	}
	if len(raw) == 0 {
		return passthrough(opaque, ErrNotSealed)
	}
	plain, err := cryptUnprotect(raw)
	if err != nil {
		return passthrough(opaque, err)
	}
	return Result{Value: string(plain)}
}

func cryptProtect(in []byte) ([]byte, error) {
	var out windows.DataBlob
	blob := windows.DataBlob{Size: uint32(len(in)), Data: &in[0]}
	if err := windows.CryptProtectData(&blob, nil, nil, 0, nil, windows.CRYPTPROTECT_UI_FORBIDDEN, &out); err != nil {
		return nil, fmt.Errorf("CryptProtectData: %w", err)
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))
	return append([]byte(nil), unsafe.Slice(out.Data, out.Size)...), nil
}

func cryptUnprotect(in []byte) ([]byte, error) {
	var out windows.DataBlob
	blob := windows.DataBlob{Size: uint32(len(in)), Data: &in[0]}
	if err := windows.CryptUnprotectData(&blob, nil, nil, 0, nil, windows.CRYPTPROTECT_UI_FORBIDDEN, &out); err != nil {
		return nil, fmt.Errorf("CryptUnprotectData: %w", err)
	}
	defer windows.LocalFree(windows.Handle(unsafe.Pointer(out.Data)))
	return append([]byte(nil), unsafe.Slice(out.Data, out.Size)...), nil
}
