package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keyrotator/cli/internal/auth"
	"github.com/keyrotator/cli/internal/config"
	"github.com/keyrotator/cli/internal/iam"
	"github.com/keyrotator/cli/internal/keys"
	"github.com/keyrotator/cli/internal/logging"
	"github.com/keyrotator/cli/internal/metrics"
)

// session holds everything a key command needs for one invocation.
type session struct {
	cfg      *config.Config
	scope    keys.Scope
	log      zerolog.Logger
	client   iam.Client
	recorder *metrics.Recorder

	logFile     io.Closer
	metricsFile string
}

// loadConfig reads --config if given, otherwise the rc files.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// stringFlag returns the flag value if it was set, otherwise fallback.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

// newSession resolves config, flags and credentials into a ready client.
// Invocation errors are returned before any remote client is built.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	credentialsFile := auth.CredentialsPath(stringFlag(cmd, "credentials", cfg.CredentialsFile))
	opts, creds, err := auth.ClientOptions(auth.Options{
		CredentialsFile: credentialsFile,
		Endpoint:        cfg.Endpoint,
		NoAuth:          cfg.NoAuth,
	})
	if err != nil {
		return nil, err
	}

	scope := keys.Scope{
		ProjectID: stringFlag(cmd, "project-id", cfg.ProjectID),
		Account:   stringFlag(cmd, "iam-account", cfg.IAMAccount),
	}
	if scope.ProjectID == "" && creds != nil {
		scope.ProjectID = creds.ProjectID
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	initial, err := cfg.RetryInitialInterval()
	if err != nil {
		return nil, err
	}
	maxElapsed, err := cfg.RetryMaxElapsed()
	if err != nil {
		return nil, err
	}

	// Past this point failures are not usage errors.
	cmd.SilenceUsage = true

	log, logFile, err := logging.NewLogger(logging.Options{
		Level:   stringFlag(cmd, "log-level", cfg.Log.Level),
		Dir:     stringFlag(cmd, "log-dir", cfg.Log.Dir),
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:         cfg,
		scope:       scope,
		log:         log,
		logFile:     logFile,
		metricsFile: stringFlag(cmd, "metrics-file", ""),
	}
	if s.metricsFile != "" {
		s.recorder = metrics.NewRecorder()
	}

	service, err := iam.NewService(cmd.Context(), opts...)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	policy := iam.RetryPolicy(initial, maxElapsed)
	policy.Notify = func(op string, err error, next time.Duration) {
		s.log.Warn().Err(err).Str("operation", op).Dur("wait", next).Msg("Retrying remote call")
		s.recorder.Retried(op)
	}
	s.client = iam.WithRetry(service, policy)

	return s, nil
}

// close writes the metrics file, if requested, and releases the log file.
func (s *session) close() error {
	var errs []error
	if s.metricsFile != "" {
		if err := s.recorder.WriteTextfile(s.metricsFile, time.Now()); err != nil {
			errs = append(errs, fmt.Errorf("failed to write metrics file: %w", err))
		}
	}
	if err := s.logFile.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	return errors.Join(errs...)
}

// finish closes s and folds any close error into err.
func (s *session) finish(err error) error {
	return errors.Join(err, s.close())
}
