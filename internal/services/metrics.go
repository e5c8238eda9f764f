// Package services implements the business logic of the bot. This file
// exposes Prometheus instrumentation for command dispatch with bounded label
// cardinality:
//
//   - command: the literal command token for known commands; unknown tokens
//     collapse into "unknown" so hostile rooms cannot grow the label set
//   - outcome: "ok" or "error"
//
// All collectors are safe for concurrent use.
package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// commandsTotal counts processed message events by command and outcome.
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of dispatched commands.",
		},
		[]string{"command", "outcome"},
	)

	// commandDuration records dispatch latency in seconds by command. The
	// buckets skew high because most commands include a remote API call.
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_command_duration_seconds",
			Help:    "Duration of command dispatch in seconds.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(commandsTotal, commandDuration)
}

// knownCommands bounds the "command" metric label.
var knownCommands = map[string]struct{}{
	CmdUserStatus:   {},
	CmdWorkers:      {},
	CmdDailyRewards: {},
	CmdPoolStatus:   {},
	CmdSubscribe:    {},
	CmdUnlink:       {},
	CmdCheckTor:     {},
	CmdHelp:         {},
}

// metricCommand maps a raw command token to its bounded metric label.
func metricCommand(command string) string {
	if _, ok := knownCommands[command]; ok {
		return command
	}
	return "unknown"
}
