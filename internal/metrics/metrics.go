package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BallotsAccepted counts successfully recorded ballots.
	BallotsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "heimwahl_ballots_accepted_total",
		Help: "Number of ballots accepted and recorded.",
	})

	// BallotsRejected counts rejected submissions by reason.
	BallotsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimwahl_ballots_rejected_total",
		Help: "Number of ballot submissions rejected, labelled by reason.",
	}, []string{"reason"})

	// CampaignMailsSent counts delivered campaign emails by kind.
	CampaignMailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimwahl_campaign_mails_sent_total",
		Help: "Number of campaign emails handed to the delivery API.",
	}, []string{"kind"})

	// CampaignMailsFailed counts campaign emails the delivery API refused.
	CampaignMailsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heimwahl_campaign_mails_failed_total",
		Help: "Number of campaign emails that could not be delivered.",
	}, []string{"kind"})
)
