package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters. The fallback counters are the interesting ones: a rising
// rate means users are getting canned content instead of model output.
var (
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindmate_model_calls_total",
		Help: "Language-model API calls by model and outcome",
	}, []string{"model", "outcome"})

	CompletionFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindmate_completion_fallbacks_total",
		Help: "Completions answered with the canned supportive reply",
	})

	SuggestionFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindmate_suggestion_fallbacks_total",
		Help: "Suggestion requests served from the keyword topic tables",
	}, []string{"topic"})

	TurnsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindmate_turns_total",
		Help: "Conversation turns by result",
	}, []string{"result"})
)
