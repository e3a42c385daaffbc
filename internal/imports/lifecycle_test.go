package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageNext(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Run("walks the full linear flow", func(t *testing.T) {
		expected := []Stage{
			StageParsed,
			StageResolved,
			StageValidated,
			StageDeduplicated,
			StageCommitting,
			StageDone,
		}

		stage := StageIdle

		for _, want := range expected {
			next, err := stage.Next()
			require.NoError(t, err)
			assert.Equal(t, want, next)

			stage = next
		}

		assert.True(t, stage.IsTerminal())
	})

	t.Run("terminal stage has no successor", func(t *testing.T) {
		_, err := StageDone.Next()

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidStageTransition)
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		_, err := Stage("floating").Next()

		require.Error(t, err)
	})
}

func TestValidateStageTransition(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		name    string
		from    Stage
		to      Stage
		wantErr error
	}{
		{name: "idle to parsed", from: StageIdle, to: StageParsed},
		{name: "committing to done", from: StageCommitting, to: StageDone},
		{name: "skipping a stage", from: StageIdle, to: StageValidated, wantErr: ErrInvalidStageTransition},
		{name: "moving backwards", from: StageValidated, to: StageParsed, wantErr: ErrInvalidStageTransition},
		{name: "leaving the terminal stage", from: StageDone, to: StageParsed, wantErr: ErrInvalidStageTransition},
		{name: "unknown source stage", from: Stage("floating"), to: StageParsed, wantErr: ErrInvalidStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStageTransition(tt.from, tt.to)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			assert.NoError(t, err)
		})
	}
}
