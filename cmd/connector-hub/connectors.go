package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/connector-hub/connector-hub/internal/config"
	"github.com/connector-hub/connector-hub/internal/connections"
	"github.com/connector-hub/connector-hub/internal/descriptor"
	"github.com/connector-hub/connector-hub/internal/secrets"
)

var connectorsCmd = &cobra.Command{
	Use:   "connectors",
	Short: "Inspect and configure connectors from the command line.",
}

func init() {
	connectorsCmd.AddCommand(
		connectorsListCmd,
		connectorsSetFieldCmd,
		connectorsSetCredentialsCmd,
		connectorsEnableCmd,
		connectorsDisableCmd,
	)
}

var connectorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded connector descriptors.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOptionalDB()
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cfg.DescriptorDir)
		if err != nil {
			return err
		}
		for _, d := range reg.All() {
			schemes := make([]string, 0, len(d.AuthSchemes))
			for _, s := range d.AuthSchemes {
				schemes = append(schemes, fmt.Sprintf("%s (%s)", s.SchemeName, s.AuthMode))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", d.UniqueKey, d.Name, strings.Join(schemes, ", "))
		}
		return nil
	},
}

var connectorsSetFieldCmd = &cobra.Command{
	Use:   "set-field <connector> <scheme> <field> [value]",
	Short: "Store one customer field value. Sensitive fields are prompted for when no value is given.",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		scheme, err := lookupSchemeCLI(cfg, args[0], args[1])
		if err != nil {
			return err
		}
		field, ok := scheme.Field(args[2])
		if !ok {
			return fmt.Errorf("scheme %s declares no field %q", args[1], args[2])
		}

		var value string
		if len(args) == 4 {
			value = args[3]
		} else if field.Sensitive {
			value, err = promptSecret(fmt.Sprintf("%s: ", field.Name))
			if err != nil {
				return err
			}
		} else {
			return errors.New("a value is required for non-sensitive fields")
		}
		if field.Required && strings.TrimSpace(value) == "" {
			return fmt.Errorf("field %s is required and cannot be empty", field.Name)
		}

		store, closePool, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closePool()

		if err := store.SetField(ctx, args[0], args[1], field.Name, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s/%s.%s\n", args[0], args[1], field.Name)
		return nil
	},
}

var connectorsSetCredentialsCmd = &cobra.Command{
	Use:   "set-credentials <connector> <scheme>",
	Short: "Store the OAuth2 client credentials for a scheme in the secrets backend.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOptionalDB()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		scheme, err := lookupSchemeCLI(cfg, args[0], args[1])
		if err != nil {
			return err
		}
		if scheme.AuthMode != descriptor.AuthModeOAuth2 {
			return fmt.Errorf("scheme %s uses %s, not OAUTH2", scheme.SchemeName, scheme.AuthMode)
		}
		if cfg.SecretsBackend == config.SecretsBackendMemory {
			return errors.New("the memory secrets backend does not persist; set SECRETS_BACKEND=vault")
		}

		fmt.Fprint(cmd.OutOrStdout(), "client id: ")
		var clientID string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &clientID); err != nil {
			return fmt.Errorf("read client id: %w", err)
		}
		clientSecret, err := promptSecret("client secret: ")
		if err != nil {
			return err
		}
		if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
			return errors.New("client id and client secret are both required")
		}

		secretsStore, err := buildSecretsStore(cfg)
		if err != nil {
			return err
		}
		creds := secrets.ClientCredentials{ClientID: strings.TrimSpace(clientID), ClientSecret: clientSecret}
		if err := secretsStore.PutClientCredentials(ctx, args[0], args[1], creds); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored credentials for %s/%s\n", args[0], args[1])
		return nil
	},
}

var connectorsEnableCmd = &cobra.Command{
	Use:   "enable <connector> <scheme>",
	Short: "Enable a configured connection.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabledCLI(cmd, args[0], args[1], true)
	},
}

var connectorsDisableCmd = &cobra.Command{
	Use:   "disable <connector> <scheme>",
	Short: "Disable a connection.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabledCLI(cmd, args[0], args[1], false)
	},
}

func setEnabledCLI(cmd *cobra.Command, connectorKey, schemeName string, enabled bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	scheme, err := lookupSchemeCLI(cfg, connectorKey, schemeName)
	if err != nil {
		return err
	}

	store, closePool, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	if enabled {
		conn, err := store.Get(ctx, connectorKey, schemeName)
		if err != nil && !errors.Is(err, connections.ErrNotFound) {
			return err
		}
		status := connections.Resolve(scheme, conn)
		if !status.Configured {
			return fmt.Errorf("connection is not fully configured; missing fields: %s",
				strings.Join(status.MissingFields, ", "))
		}
	}

	if err := store.SetEnabled(ctx, connectorKey, schemeName, enabled); err != nil {
		if errors.Is(err, connections.ErrNotFound) {
			return errors.New("connection has no stored configuration")
		}
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s\n", state, connectorKey, schemeName)
	return nil
}

func lookupSchemeCLI(cfg config.Config, connectorKey, schemeName string) (descriptor.AuthScheme, error) {
	reg, err := buildRegistry(cfg.DescriptorDir)
	if err != nil {
		return descriptor.AuthScheme{}, err
	}
	d, ok := reg.Get(connectorKey)
	if !ok {
		return descriptor.AuthScheme{}, fmt.Errorf("unknown connector %q", connectorKey)
	}
	scheme, ok := d.Scheme(schemeName)
	if !ok {
		return descriptor.AuthScheme{}, fmt.Errorf("connector %s has no scheme %q", connectorKey, schemeName)
	}
	return scheme, nil
}

func openStore(ctx context.Context, cfg config.Config) (*connections.Store, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return connections.NewStore(pool), pool.Close, nil
}

// promptSecret reads a value without echo when stdin is a terminal, and
// falls back to a plain line read when it is not (pipes, tests).
func promptSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var value string
		if _, err := fmt.Fscanln(os.Stdin, &value); err != nil {
			return "", err
		}
		return value, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
