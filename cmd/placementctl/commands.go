// cmd/placementctl/commands.go
package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/javajoker/placement-backend/internal/app"
	"github.com/javajoker/placement-backend/internal/database"
	"github.com/javajoker/placement-backend/internal/models"
	"github.com/javajoker/placement-backend/internal/services"
	"github.com/javajoker/placement-backend/internal/utils"
)

var (
	seedFile      string
	applicationID string
	tokenUser     string
	tokenRole     string
	tokenDept     string
	tokenTTL      int

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and its exclusion indexes",
		RunE:  runMigrate,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load directory members and catalog projects from a YAML file",
		RunE:  runSeed,
	}

	reconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "Repair application allocation summaries from the assignment records",
		RunE:  runReconcile,
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token for local testing",
		RunE:  runToken,
	}
)

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (defaults to SEED_FILE)")
	reconcileCmd.Flags().StringVar(&applicationID, "application", "", "repair a single application")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (random when empty)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "student", "admin, hod, faculty or student")
	tokenCmd.Flags().StringVar(&tokenDept, "department", "", "department code for hod and faculty")
	tokenCmd.Flags().IntVar(&tokenTTL, "ttl", 24, "lifetime in hours")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if cfg.Store.Driver != "postgres" {
		fmt.Fprintf(cmd.OutOrStdout(), "store driver %q needs no migrations\n", cfg.Store.Driver)
		return nil
	}
	st, err := app.OpenStore(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	path := seedFile
	if path == "" {
		path = cfg.SeedFile
	}
	if path == "" {
		return fmt.Errorf("a seed file is required (--file or SEED_FILE)")
	}

	seed, err := database.LoadSeedFile(path)
	if err != nil {
		return err
	}

	st, err := app.OpenStore(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := database.SeedInitialData(cmd.Context(), st, seed); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d members and %d projects\n", len(seed.Members), len(seed.Projects))
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	st, err := app.OpenStore(cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	allocation := services.NewAllocationService(st, services.NewStoreDirectory(st), nil, services.Options{
		StoreTimeout:               cfg.Engine.StoreTimeout(),
		ExclusiveFacultyAllocation: cfg.Engine.ExclusiveFacultyAllocation,
	})

	if applicationID == "" {
		repaired, err := allocation.ReconcileAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d application(s) repaired\n", repaired)
		return nil
	}

	id, err := uuid.Parse(applicationID)
	if err != nil {
		return fmt.Errorf("invalid application id: %w", err)
	}
	operator := models.Identity{UserID: uuid.Nil, Role: models.RoleAdmin}
	report, err := allocation.ReconcileMirror(cmd.Context(), operator, id)
	if err != nil {
		return err
	}
	if report.Repaired {
		fmt.Fprintf(cmd.OutOrStdout(), "application %s repaired\n", id)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "application %s already consistent\n", id)
	}
	return nil
}

func runToken(cmd *cobra.Command, args []string) error {
	identity := models.Identity{Role: models.Role(strings.ToLower(tokenRole))}
	if !identity.Role.Valid() {
		return fmt.Errorf("invalid role %q", tokenRole)
	}

	if tokenUser == "" {
		identity.UserID = uuid.New()
	} else {
		id, err := uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		identity.UserID = id
	}

	if tokenDept != "" {
		dept, ok := models.NormalizeDepartment(tokenDept)
		if !ok {
			return fmt.Errorf("invalid department %q", tokenDept)
		}
		identity.Department = dept
	}

	utils.SetJWTSecret(cfg.JWT.SecretKey)
	token, err := utils.GenerateJWT(identity, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
