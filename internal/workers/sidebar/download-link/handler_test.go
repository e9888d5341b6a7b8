package downloadlink

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chime-sidebar/internal/common/config"
	"chime-sidebar/internal/common/errors"
	"chime-sidebar/internal/common/logger"
	"chime-sidebar/internal/sidebar"
	"chime-sidebar/internal/sidebar/sidebartest"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:  5 * time.Second,
		BasePath: sidebar.DefaultDownloadPath,
	}
}

func createTestHandler(t *testing.T, cfg *Config) *Handler {
	if cfg == nil {
		cfg = createTestConfig()
	}
	return NewHandler(cfg, nil, logger.NewTestLogger(t))
}

func createInput(t *testing.T, overrides map[string]any) *Input {
	return &Input{InputValues: sidebartest.RawInputs(t, overrides)}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		config         *Config
		overrides      map[string]any
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "default path",
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, strings.HasPrefix(output.DownloadAsPdfLink, "/download-as-pdf?population=3600000&"))
				assert.True(t, strings.HasSuffix(output.DownloadAsPdfLink, "&show_tables=False&show_tool_details=True"))
			},
		},
		{
			name:   "configured path",
			config: &Config{Timeout: time.Second, BasePath: "/export/pdf"},
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, strings.HasPrefix(output.DownloadAsPdfLink, "/export/pdf?"))
			},
		},
		{
			name:      "null values omitted",
			overrides: map[string]any{"doubling_time": nil, "max_y_axis_value": nil},
			validateOutput: func(t *testing.T, output *Output) {
				assert.NotContains(t, output.DownloadAsPdfLink, "doubling_time")
				assert.NotContains(t, output.DownloadAsPdfLink, "max_y_axis_value")
			},
		},
		{
			name:      "percent inputs not scaled",
			overrides: map[string]any{"market_share": 22.5},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Contains(t, output.DownloadAsPdfLink, "market_share=22.5&")
			},
		},
		{
			name:      "no validation applied",
			overrides: map[string]any{"n_days": 5.0},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Contains(t, output.DownloadAsPdfLink, "n_days=5&")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.config)
			output, err := handler.Execute(context.Background(), createInput(t, tt.overrides))
			require.NoError(t, err)
			require.NotNil(t, output)
			assert.NotEmpty(t, output.SubmissionID)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_LinkRoundTrips(t *testing.T) {
	handler := createTestHandler(t, nil)
	input := createInput(t, map[string]any{"date_first_hospitalized": "2020-03-07"})

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	parsed, err := sidebar.ParseLink(output.DownloadAsPdfLink)
	require.NoError(t, err)
	want, err := sidebar.Coerce(input.InputValues)
	require.NoError(t, err)
	assert.Equal(t, sidebar.BuildLink(want, sidebar.DefaultDownloadPath), sidebar.BuildLink(parsed, sidebar.DefaultDownloadPath))
}

func TestHandler_Execute_KeepsSubmissionID(t *testing.T) {
	handler := createTestHandler(t, nil)
	input := createInput(t, nil)
	input.SubmissionID = "sub-7"

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "sub-7", output.SubmissionID)
}

// ==========================
// Error Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("schema mismatch", func(t *testing.T) {
		_, err := createTestHandler(t, nil).Execute(context.Background(), &Input{})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeSchemaMismatch))
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := createTestHandler(t, nil).Execute(context.Background(),
			createInput(t, map[string]any{"current_date": "04/01/2020"}))
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, errors.ErrCodeCoercionFailed))
		assert.Equal(t, "current_date", errors.FieldOf(err))
	})
}

func TestLoadConfig(t *testing.T) {
	c := LoadConfig(&config.Config{})
	assert.Equal(t, sidebar.DefaultDownloadPath, c.BasePath)

	c = LoadConfig(&config.Config{Sidebar: config.SidebarConfig{DownloadBasePath: "/pdf"}})
	assert.Equal(t, "/pdf", c.BasePath)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_Execute(b *testing.B) {
	handler := NewHandler(createTestConfig(), nil, logger.NewNoOpLogger())
	input := &Input{InputValues: sidebartest.RawInputs(b, nil)}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := handler.Execute(ctx, input); err != nil {
			b.Fatal(err)
		}
	}
}
