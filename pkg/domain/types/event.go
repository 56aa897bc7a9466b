package types

// EventType is the kind of notification published by the engine
type EventType string

const (
	EventFactorsUpdated              EventType = "factors_updated"
	EventScoresUpdated               EventType = "scores_updated"
	EventCorrelationUpdated          EventType = "correlation_updated"
	EventPredictionsGenerated        EventType = "predictions_generated"
	EventExecutiveMetricsUpdated     EventType = "executive_metrics_updated"
	EventQuantitativeAnalysisUpdated EventType = "quantitative_analysis_updated"
	EventEngineStarted               EventType = "engine_started"
	EventEngineStopped               EventType = "engine_stopped"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}
