package common

const (
	RedisStreamSignalRun = "signal.pipeline.run"

	RedisStreamGroup    = "executor-group"
	RedisStreamConsumer = "executor-consumer"

	RedisKeySnapshot = "indicator_snapshot:%s"

	EventRecommendationCreated = "RECOMMENDATION_CREATED"
)
