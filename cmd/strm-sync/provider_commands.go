package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapetech/strmsync/internal/httpclient"
	"github.com/snapetech/strmsync/internal/provider"
	"github.com/snapetech/strmsync/internal/safeurl"
)

func newProviderCommand(a *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "provider",
		Aliases: []string{"providers"},
		Short:   "Manage provider accounts",
	}
	cmd.AddCommand(newProviderListCommand(a))
	cmd.AddCommand(newProviderAddCommand(a))
	cmd.AddCommand(newProviderRemoveCommand(a))
	cmd.AddCommand(newProviderUseCommand(a))
	cmd.AddCommand(newProviderCheckCommand(a))
	return cmd
}

func newProviderListCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			providers := a.registry.List()
			if len(providers) == 0 {
				fmt.Fprintln(out, "No providers configured; add one with `strm-sync provider add`.")
				return nil
			}
			active := a.activeProvider()
			rows := make([][]string, 0, len(providers))
			for _, p := range providers {
				mark := ""
				if p.Name == active {
					mark = "*"
				}
				rows = append(rows, []string{mark, p.Name, p.ServerBaseURL, p.Username})
			}
			fmt.Fprintln(out, renderTable([]string{"", "Name", "Server", "Username"}, rows, nil))
			return nil
		},
	}
}

func newProviderAddCommand(a *appContext) *cobra.Command {
	var server, username, password string
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a provider or update an existing one",
		Long: "Add a provider or update an existing one. Omitting the password keeps the stored one.\n" +
			"The password is protected by the platform secret store when one is available.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passwordStdin {
				secret, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = secret
			}
			name := strings.TrimSpace(args[0])
			existing, found := a.registry.Get(name)
			p := provider.Provider{Name: name, ServerBaseURL: server, Username: username, Secret: password}
			if found {
				if !cmd.Flags().Changed("server") {
					p.ServerBaseURL = existing.ServerBaseURL
				}
				if !cmd.Flags().Changed("username") {
					p.Username = existing.Username
				}
			}
			if err := a.registry.Upsert(p); err != nil {
				return err
			}
			if _, err := safeurl.ServerBase(p.ServerBaseURL); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: server %q: %v; fetches will fail until it is fixed\n", p.ServerBaseURL, err)
			}
			if a.state.LastProvider == "" {
				a.state.LastProvider = name
			}
			if err := a.save(); err != nil {
				return err
			}
			verb := "Added"
			if found {
				verb = "Updated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s provider %q (secret store: %s)\n", verb, name, a.vault.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "", "Server base URL, e.g. http://host:8080")
	cmd.Flags().StringVar(&username, "username", "", "Account user name")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from standard input")
	return cmd
}

func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newProviderRemoveCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a provider",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if !a.registry.Delete(name) {
				return fmt.Errorf("%w: %q", provider.ErrNotFound, name)
			}
			if a.state.LastProvider == name {
				a.state.LastProvider = ""
			}
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed provider %q\n", name)
			return nil
		},
	}
}

func newProviderUseCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a provider the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if _, ok := a.registry.Get(name); !ok {
				return fmt.Errorf("%w: %q", provider.ErrNotFound, name)
			}
			a.state.LastProvider = name
			if err := a.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active provider: %s\n", name)
			return nil
		},
	}
}

func newProviderCheckCommand(a *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [name...]",
		Short: "Probe provider accounts and report their status",
		Long:  "Probe provider accounts and report their status. Without names every provider is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = a.registry.Names()
			}
			if len(names) == 0 {
				return errors.New("no providers configured")
			}
			hc, err := httpclient.New(httpclient.Options{
				Timeout:            a.cfg.RequestTimeoutDuration(),
				UserAgent:          a.cfg.UserAgent,
				InsecureSkipVerify: a.cfg.InsecureTLS,
				ProxyURL:           a.cfg.ProxyURL,
				Decompress:         true,
			})
			if err != nil {
				return err
			}
			failed := 0
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				creds, err := a.registry.Credentials(name)
				if err != nil {
					return err
				}
				res := provider.ProbePlayerAPI(cmd.Context(), creds, hc)
				if res.Status != provider.StatusOK {
					failed++
				}
				rows = append(rows, probeRow(res))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "Status", "HTTP", "Latency", "Account", "Expires", "Max conns"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			if failed > 0 {
				return fmt.Errorf("%d of %d providers failed the check", failed, len(names))
			}
			return nil
		},
	}
}

func probeRow(res provider.ProbeResult) []string {
	code := ""
	if res.StatusCode != 0 {
		code = strconv.Itoa(res.StatusCode)
	}
	expires := ""
	if !res.ExpiresAt.IsZero() {
		expires = res.ExpiresAt.Format(time.DateOnly)
	}
	return []string{
		res.Provider,
		string(res.Status),
		code,
		fmt.Sprintf("%dms", res.LatencyMs),
		res.AccountStatus,
		expires,
		res.MaxConns,
	}
}
