// comanderoctl es la CLI de operación: ping al servicio, alta del primer
// admin y emisión/inspección de tokens para debugging.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
	"github.com/dropDatabas3/comandero/internal/security/password"
	"github.com/dropDatabas3/comandero/internal/store/pg"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	var (
		baseURL = envOr("COMANDERO_URL", "http://localhost:8080")
		dsn     = envOr("COMANDERO_DSN", "")
		secret  = envOr("COMANDERO_TOKEN_SECRET", "")
		issuer  = envOr("COMANDERO_TOKEN_ISSUER", "comandero")
	)

	root := &cobra.Command{
		Use:   "comanderoctl",
		Short: "CLI de operación para comandero",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servicio (env COMANDERO_URL)")

	// ping: GET /healthz
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Chequea que el servicio esté vivo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cl := &http.Client{Timeout: 10 * time.Second}
			resp, err := cl.Get(strings.TrimRight(baseURL, "/") + "/healthz")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode/100 != 2 {
				return fmt.Errorf("ping falló: status=%d body=%s", resp.StatusCode, string(body))
			}
			fmt.Println("ok")
			return nil
		},
	}

	// seed-admin: alta directa contra la base
	var adminEmail, adminName, adminPass string
	seedCmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Crea el primer usuario ADMIN directo en la base",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("falta DSN (flag --dsn o env COMANDERO_DSN)")
			}
			if adminEmail == "" || adminPass == "" {
				return fmt.Errorf("faltan --email y --password")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			store, err := pg.New(ctx, pg.Config{DSN: dsn})
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			defer store.Close()

			hash, err := password.Hash(adminPass)
			if err != nil {
				return err
			}

			u := &types.User{
				ID:           uuid.NewString(),
				Email:        strings.ToLower(strings.TrimSpace(adminEmail)),
				Name:         adminName,
				PasswordHash: hash,
				Roles:        []string{auth.RoleAdmin},
			}
			if err := store.Users().Create(ctx, u); err != nil {
				return fmt.Errorf("crear admin: %w", err)
			}
			fmt.Printf("admin creado: %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	seedCmd.Flags().StringVar(&dsn, "dsn", dsn, "DSN de Postgres (env COMANDERO_DSN)")
	seedCmd.Flags().StringVar(&adminEmail, "email", "", "email del admin")
	seedCmd.Flags().StringVar(&adminName, "name", "Admin", "nombre del admin")
	seedCmd.Flags().StringVar(&adminPass, "password", "", "password del admin")

	// token issue / inspect
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Emite o inspecciona tokens de sesión",
	}
	tokenCmd.PersistentFlags().StringVar(&secret, "secret", secret, "secreto compartido (env COMANDERO_TOKEN_SECRET)")
	tokenCmd.PersistentFlags().StringVar(&issuer, "issuer", issuer, "claim iss (env COMANDERO_TOKEN_ISSUER)")

	var issueEmail, issueRoles string
	var issueTTL time.Duration
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Emite un token para pruebas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("falta el secreto (--secret o env COMANDERO_TOKEN_SECRET)")
			}
			iss := envelope.NewIssuer(envelope.Options{Secret: secret, Issuer: issuer, TTL: issueTTL})
			tok, err := iss.Issue(issueEmail, strings.Split(issueRoles, ","))
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&issueEmail, "email", "", "subject del token")
	issueCmd.Flags().StringVar(&issueRoles, "roles", auth.RoleUser, "roles separados por coma")
	issueCmd.Flags().DurationVar(&issueTTL, "ttl", time.Hour, "vigencia del token")

	inspectCmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Descifra y valida un token, mostrando sus claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("falta el secreto (--secret o env COMANDERO_TOKEN_SECRET)")
			}
			ver := envelope.NewVerifier(envelope.Options{Secret: secret, Issuer: issuer})
			claims, err := ver.Verify(args[0])
			if err != nil {
				return fmt.Errorf("token inválido: %w", err)
			}
			out, _ := json.MarshalIndent(map[string]any{
				"subject":    claims.Subject,
				"roles":      claims.Roles,
				"issuer":     claims.Issuer,
				"issued_at":  claims.IssuedAt.Format(time.RFC3339),
				"expires_at": claims.ExpiresAt.Format(time.RFC3339),
			}, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}

	tokenCmd.AddCommand(issueCmd, inspectCmd)
	root.AddCommand(pingCmd, seedCmd, tokenCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
