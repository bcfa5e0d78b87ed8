package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	c.Telegram.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.APIBaseURL), "/")
	if c.Telegram.APIBaseURL == "" {
		c.Telegram.APIBaseURL = defaultTelegramAPIBaseURL
	}
	if c.Telegram.PollTimeoutSeconds <= 0 {
		c.Telegram.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if c.Telegram.RequestTimeoutSeconds <= 0 {
		c.Telegram.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}

	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
	if c.Storage.MoveRetryAttempts <= 0 {
		c.Storage.MoveRetryAttempts = defaultStorageMoveRetries
	}

	if c.Workflow.Lanes <= 0 {
		c.Workflow.Lanes = defaultWorkflowLanes
	}
	if c.Workflow.LaneQueueDepth <= 0 {
		c.Workflow.LaneQueueDepth = defaultLaneQueueDepth
	}
	if c.Workflow.RecognitionInterval <= 0 {
		c.Workflow.RecognitionInterval = defaultRecognitionInterval
	}
	if c.Workflow.RecognitionInitialDelay < 0 {
		c.Workflow.RecognitionInitialDelay = defaultRecognitionInitialDelay
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
