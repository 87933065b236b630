//go:build unit

package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/manifestpush/internal/domain/entities"
	"github.com/rios0rios0/manifestpush/internal/infrastructure/controllers"
	"github.com/rios0rios0/manifestpush/test/domain/commanddoubles"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "should map configuration errors", err: fmt.Errorf("x: %w", entities.ErrConfiguration), expected: exitConfiguration},
		{name: "should map conflicts", err: entities.NewStepError(entities.StepUpdateReference, "heads/main", entities.ErrConflict), expected: exitConflict},
		{name: "should map authentication errors", err: entities.ErrAuthentication, expected: exitAuthentication},
		{name: "should map everything else to failure", err: errors.New("boom"), expected: exitFailure},
		{name: "should map transport errors to failure", err: entities.ErrTransport, expected: exitFailure},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			got := exitCode(tt.err)

			// then
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildRootCommand(t *testing.T) {
	t.Parallel()

	t.Run("should expose publish flags on the root command", func(t *testing.T) {
		t.Parallel()

		// given
		controller := controllers.NewPublishController(&commanddoubles.StubPublishCommand{})

		// when
		root := buildRootCommand(controller)

		// then
		for _, name := range []string{"owner", "repo", "branch", "file", "message", "token", "app-id", "dry-run"} {
			assert.NotNil(t, root.Flags().Lookup(name), name)
		}
		assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
		assert.True(t, root.SilenceUsage)
	})
}
