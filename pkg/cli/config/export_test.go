package config

import "time"

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:  botToken,
		channelID: channelID,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewArchiveForTest creates an Archive config for testing purposes
func NewArchiveForTest(bucket, prefix, endpoint, credentialsFile string) *Archive {
	return &Archive{
		bucket:          bucket,
		prefix:          prefix,
		endpoint:        endpoint,
		credentialsFile: credentialsFile,
	}
}

// EngineParams mirrors the Engine flags for tests
type EngineParams struct {
	Interval            time.Duration
	Seed                *uint64
	ScoreNoise          bool
	PortfolioVolatility float64
	HistoryCapacity     int
	TopRisks            int
	VaRConfidences      []float64
}

// NewEngineForTest creates an Engine config for testing purposes
func NewEngineForTest(p EngineParams) *Engine {
	e := &Engine{
		interval:            p.Interval,
		scoreNoise:          p.ScoreNoise,
		portfolioVolatility: p.PortfolioVolatility,
		historyCapacity:     p.HistoryCapacity,
		topRisks:            p.TopRisks,
		varConfidences:      p.VaRConfidences,
	}
	if p.Seed != nil {
		e.seed = *p.Seed
		e.seedSet = true
	}
	return e
}
