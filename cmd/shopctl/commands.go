package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-catalog-server/internal/config"
	"github.com/jrsteele09/go-catalog-server/session"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// cli holds the state shared by every command of one invocation
type cli struct {
	apiURL   string
	email    string
	password string
	client   *session.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "shopctl",
		Short: "Catalog API client",
		Long: `shopctl talks to the catalog API as a signed in user.

Example usage:
  shopctl featured
  shopctl category shoes
  shopctl --email jane@example.com --password secret recommendations
  shopctl --email jane@example.com --password secret profile`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.connect(cmd.Context(), cmd.Name() != "login" && cmd.Name() != "signup")
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.apiURL, "api", config.GetEnv("SHOPCTL_API", "http://localhost:8080"), "catalog API base URL")
	rootCmd.PersistentFlags().StringVar(&c.email, "email", config.GetEnv("SHOPCTL_EMAIL", ""), "account email")
	rootCmd.PersistentFlags().StringVar(&c.password, "password", config.GetEnv("SHOPCTL_PASSWORD", ""), "account password")

	rootCmd.AddCommand(
		c.loginCmd(),
		c.signupCmd(),
		c.profileCmd(),
		c.refreshCmd(),
		c.featuredCmd(),
		c.categoryCmd(),
		c.recommendationsCmd(),
	)
	return rootCmd
}

// connect creates the session client and signs in when credentials are given
func (c *cli) connect(ctx context.Context, login bool) error {
	client, err := session.NewClient(c.apiURL)
	if err != nil {
		return err
	}
	c.client = client

	if !login || c.email == "" {
		return nil
	}
	return c.client.Login(ctx, c.email, c.password)
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.email == "" || c.password == "" {
				return errors.New("--email and --password are required")
			}
			if err := c.client.Login(cmd.Context(), c.email, c.password); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.client.Store().Snapshot().User)
		},
	}
}

func (c *cli) signupCmd() *cobra.Command {
	var name, confirm string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.client.Signup(cmd.Context(), session.SignupRequest{
				Name:            name,
				Email:           c.email,
				Password:        c.password,
				ConfirmPassword: confirm,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c.client.Store().Snapshot().User)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "repeat the password")
	return cmd
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Print the signed in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := c.client.CheckAuth(cmd.Context())
			if user == nil {
				return errors.New("not signed in")
			}
			return printJSON(cmd.OutOrStdout(), user)
		},
	}
}

func (c *cli) refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := c.client.RefreshToken(cmd.Context())
			if err != nil {
				return err
			}
			return printRaw(cmd.OutOrStdout(), body)
		},
	}
}

func (c *cli) featuredCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "featured",
		Short: "List featured products",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get(cmd, "/products/featured")
		},
	}
}

func (c *cli) categoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "category <name>",
		Short: "List the products of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get(cmd, "/products/category/"+url.PathEscape(args[0]))
		},
	}
}

func (c *cli) recommendationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommendations",
		Short: "List recommended products (requires sign in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.get(cmd, "/products/recommendations")
		},
	}
}

// get fetches path through the session client and prints the JSON body
func (c *cli) get(cmd *cobra.Command, path string) error {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, c.client.URL(path), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.HTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &payload)
		return fmt.Errorf("%s: %d %s", path, resp.StatusCode, payload.Message)
	}
	return printRaw(cmd.OutOrStdout(), body)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRaw(w io.Writer, body []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		_, err = w.Write(body)
		return err
	}
	out.WriteByte('\n')
	_, err := out.WriteTo(w)
	return err
}
