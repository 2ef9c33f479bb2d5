package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storychain_stories_created_total",
		Help: "Total number of successfully created stories.",
	})

	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storychain_turns_total",
			Help: "Total number of turn submissions by outcome.",
		},
		[]string{"outcome"},
	)

	upvoteTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storychain_upvote_toggles_total",
			Help: "Total number of upvote toggles by resulting state.",
		},
		[]string{"state"},
	)

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storychain_token_verifications_total",
			Help: "Total number of token verification attempts by status.",
		},
		[]string{"status"},
	)
)
