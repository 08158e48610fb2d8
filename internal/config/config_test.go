package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSSMClient struct {
	mock.Mock
}

func (m *MockSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ssm.GetParameterOutput), args.Error(1)
}

func parameter(value string) *ssm.GetParameterOutput {
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String(value)}}
}

func TestLoad(t *testing.T) {

	t.Run("should use defaults when no file and no env is present", func(t *testing.T) {
		app, err := load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, 80.0, app.Layout.PixelsPerHour)
		assert.Equal(t, 20.0, app.Layout.MinEventHeight)
		assert.Equal(t, "familyhub", app.Database.Name)
		assert.Equal(t, 8181, app.Port)
		assert.True(t, app.Frontend.Enabled)
	})

	t.Run("should override defaults with file and env", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := "db:\n  host: db.internal\n  port: 6543\nlayout:\n  pixelsperhour: 60\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		t.Setenv("FAMILYHUB_DB_HOST", "env-host")
		t.Setenv("FAMILYHUB_STORAGE_AVATARS", "/var/avatars")

		// when
		app, err := load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "env-host", app.Database.Host)
		assert.Equal(t, 6543, app.Database.Port)
		assert.Equal(t, 60.0, app.Layout.PixelsPerHour)
		assert.Equal(t, "/var/avatars", app.Storage.Avatars)
	})
}

func TestResolveSecrets(t *testing.T) {

	t.Run("should replace secret references with parameter values", func(t *testing.T) {
		// given
		mockSSM := new(MockSSMClient)
		mockSSM.On("GetParameter", mock.Anything, mock.MatchedBy(func(input *ssm.GetParameterInput) bool {
			return *input.Name == "/familyhub/db-pass" && *input.WithDecryption
		})).Return(parameter("s3cret"), nil)
		app := defaults()
		app.Database.Pass = "ssm:/familyhub/db-pass"
		app.Google.ClientSecret = "plain"

		// when
		err := ResolveSecrets(context.Background(), &app, &SSMResolver{client: mockSSM})

		// then
		require.NoError(t, err)
		assert.Equal(t, "s3cret", app.Database.Pass)
		assert.Equal(t, "plain", app.Google.ClientSecret)
		mockSSM.AssertExpectations(t)
	})

	t.Run("should fail when the parameter is empty", func(t *testing.T) {
		mockSSM := new(MockSSMClient)
		mockSSM.On("GetParameter", mock.Anything, mock.Anything).Return(parameter(""), nil)
		app := defaults()
		app.Google.ClientSecret = "ssm:/familyhub/google"

		err := ResolveSecrets(context.Background(), &app, &SSMResolver{client: mockSSM})

		assert.ErrorContains(t, err, "is empty")
	})

	t.Run("should return the API error", func(t *testing.T) {
		mockSSM := new(MockSSMClient)
		apiErr := errors.New("access denied")
		mockSSM.On("GetParameter", mock.Anything, mock.Anything).Return(nil, apiErr)
		app := defaults()
		app.Google.ClientId = "ssm:/familyhub/google-id"

		err := ResolveSecrets(context.Background(), &app, &SSMResolver{client: mockSSM})

		assert.ErrorIs(t, err, apiErr)
	})
}

func TestHasSecretRefs(t *testing.T) {
	app := defaults()
	assert.False(t, hasSecretRefs(app))

	app.Database.Pass = "ssm:/x"
	assert.True(t, hasSecretRefs(app))
}
