package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/manifestpush/internal"
	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	"github.com/rios0rios0/manifestpush/internal/infrastructure/controllers"
)

const (
	exitFailure        = 1
	exitConfiguration  = 2
	exitConflict       = 3
	exitAuthentication = 4
)

func buildRootCommand(publishController *controllers.PublishController) *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "manifestpush [file]",
		Short: "Commit a single file to a GitHub branch without a local clone",
		Long: `Publishes one local file as a new commit on a GitHub branch using the
git data API (tree, commit, reference update). Meant to run inside CI after a
build step rewrites a manifest.

Authenticates as a GitHub App installation when APP_ID and APP_PRIVATE_KEY are
set, with GITHUB_TOKEN otherwise.

Exit codes: 0 success, 1 failure, 2 configuration error,
3 branch moved concurrently (re-run), 4 authentication error.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          publishController.Execute,
	}
	publishController.AddFlags(cmd)

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:          bind.Use,
			Short:        bind.Short,
			Long:         bind.Long,
			SilenceUsage: true,
			RunE:         controller.Execute,
		}

		// Add controller-specific flags
		if pc, ok := controller.(*controllers.PublishController); ok {
			subCmd.Args = cobra.MaximumNArgs(1)
			pc.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, entities.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, entities.ErrConflict):
		return exitConflict
	case errors.Is(err, entities.ErrAuthentication):
		return exitAuthentication
	default:
		return exitFailure
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}

	// Inject controllers via DIG
	publishController := injectPublishController()
	cobraRoot := buildRootCommand(publishController)

	// Add all subcommands
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Errorf("Error executing 'manifestpush': %s", err)
		os.Exit(exitCode(err))
	}
}
