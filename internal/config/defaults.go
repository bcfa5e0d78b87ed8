package config

const (
	defaultDataDir                 = "~/.local/share/onboardbot"
	defaultLogDir                  = "~/.local/share/onboardbot/logs"
	defaultTelegramAPIBaseURL      = "https://api.telegram.org"
	defaultPollTimeoutSeconds      = 30
	defaultRequestTimeoutSeconds   = 30
	defaultStorageMoveRetries      = 3
	defaultWorkflowLanes           = 4
	defaultLaneQueueDepth          = 64
	defaultRecognitionInterval     = 30
	defaultRecognitionInitialDelay = 60
	defaultLogFormat               = "auto"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Telegram: Telegram{
			APIBaseURL:            defaultTelegramAPIBaseURL,
			PollTimeoutSeconds:    defaultPollTimeoutSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Storage: Storage{
			MoveRetryAttempts: defaultStorageMoveRetries,
		},
		Workflow: Workflow{
			Lanes:                   defaultWorkflowLanes,
			LaneQueueDepth:          defaultLaneQueueDepth,
			RecognitionInterval:     defaultRecognitionInterval,
			RecognitionInitialDelay: defaultRecognitionInitialDelay,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
