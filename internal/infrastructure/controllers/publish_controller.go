package controllers

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/manifestpush/internal/domain/commands"
	"github.com/rios0rios0/manifestpush/internal/domain/entities"
)

// PublishController handles the publish command and the bare root invocation.
type PublishController struct {
	command commands.Publish
	lookup  entities.LookupFunc
}

// NewPublishController creates a new PublishController reading the process environment.
func NewPublishController(command commands.Publish) *PublishController {
	return &PublishController{command: command, lookup: os.LookupEnv}
}

// GetBind returns the Cobra command metadata for the publish controller.
func (it *PublishController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "publish [file]",
		Short: "Commit a local file to a branch through the GitHub API",
		Long: `Publish a local file as a new commit on a GitHub branch without a clone.

The file is sent as a single tree entry on top of the current branch tip,
committed with that tip as its only parent, and the branch is fast-forwarded
to the new commit. If the branch moved in the meantime the update is refused
and the command exits with code 3; re-run it to publish on top of the new tip.

Settings are read from the config file, then the environment
(GITHUB_REPOSITORY, GITHUB_REF_NAME, MANIFEST_PATH, COMMIT_MESSAGE, GITHUB_TOKEN,
APP_ID, APP_PRIVATE_KEY, INSTALLATION_ID, GITHUB_API_URL), then flags.`,
	}
}

// AddFlags adds the publish flags to the given Cobra command.
func (it *PublishController) AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringP("config", "c", "", "Path to config file (default: auto-detect)")
	flags.String("owner", "", "Repository owner (env: GITHUB_REPOSITORY_OWNER)")
	flags.StringP("repo", "r", "", "Repository as name or owner/name (env: GITHUB_REPOSITORY)")
	flags.StringP("branch", "b", "", "Target branch (env: GITHUB_REF_NAME, default: repository default branch)")
	flags.StringP("file", "f", "", "Local file to publish (env: MANIFEST_PATH)")
	flags.String("target-path", "", "Path inside the repository (default: the local file path)")
	flags.StringP("message", "m", "", "Commit message (env: COMMIT_MESSAGE)")
	flags.String("token", "", "Static token, ${ENV_VAR} or token file (env: GITHUB_TOKEN)")
	flags.Int64("app-id", 0, "GitHub App id (env: APP_ID)")
	flags.String("app-private-key", "", "GitHub App private key, ${ENV_VAR} or key file (env: APP_PRIVATE_KEY)")
	flags.Int64("installation-id", 0, "GitHub App installation id (env: INSTALLATION_ID, default: looked up)")
	flags.String("api-url", "", "GitHub REST API root (env: GITHUB_API_URL)")
	flags.Duration("timeout", entities.DefaultTimeout, "Deadline for the whole publish sequence")
	flags.Int("retries", entities.DefaultRetries, "Retries for transient transport failures (0 disables)")
	flags.Bool("dry-run", false, "Resolve the branch tip but do not create any object")
}

// Execute builds the settings and runs the publish command.
func (it *PublishController) Execute(cmd *cobra.Command, args []string) error {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	settings, err := it.buildSettings(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := it.command.Execute(ctx, settings)
	if err != nil {
		return err
	}

	if result.DryRun {
		logger.Infof("[dry-run] %s of %s is at %s; nothing was written", result.Branch, result.Repository, result.BaseSHA)
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.CommitSHA)
	return nil
}

// buildSettings layers defaults, config file, environment and explicitly set flags.
func (it *PublishController) buildSettings(cmd *cobra.Command, args []string) (*entities.Settings, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	if configPath == "" {
		if found, findErr := entities.FindConfigFile(); findErr == nil {
			configPath = found
		}
	}
	if configPath != "" {
		logger.Infof("Using config file: %s", configPath)
	}

	settings, err := entities.NewSettings(configPath)
	if err != nil {
		return nil, err
	}
	if envErr := settings.ApplyEnv(it.lookup); envErr != nil {
		return nil, envErr
	}

	if flags.Changed("owner") {
		settings.Owner, _ = flags.GetString("owner")
	}
	if flags.Changed("repo") {
		repo, _ := flags.GetString("repo")
		settings.SetRepository(repo)
	}
	if flags.Changed("branch") {
		settings.Branch, _ = flags.GetString("branch")
	}
	if flags.Changed("file") {
		settings.FilePath, _ = flags.GetString("file")
	}
	if len(args) > 0 {
		settings.FilePath = args[0]
	}
	if flags.Changed("target-path") {
		settings.TargetPath, _ = flags.GetString("target-path")
	}
	if flags.Changed("message") {
		settings.CommitMessage, _ = flags.GetString("message")
	}
	if flags.Changed("token") {
		settings.Token, _ = flags.GetString("token")
	}
	if flags.Changed("app-id") {
		settings.App.ID, _ = flags.GetInt64("app-id")
	}
	if flags.Changed("app-private-key") {
		settings.App.PrivateKey, _ = flags.GetString("app-private-key")
	}
	if flags.Changed("installation-id") {
		settings.App.InstallationID, _ = flags.GetInt64("installation-id")
	}
	if flags.Changed("api-url") {
		settings.APIURL, _ = flags.GetString("api-url")
	}
	if flags.Changed("timeout") {
		settings.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("retries") {
		settings.Retries, _ = flags.GetInt("retries")
	}
	settings.DryRun, _ = flags.GetBool("dry-run")

	settings.ResolveSecrets(it.lookup)
	return settings, nil
}
