package order

import (
	"github.com/jcmexdev/labeeb-storefront/internal/pkg/i18n"
)

// progression is the fixed, total order of non-cancelled statuses.
var progression = []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered}

var stepIcons = map[Status]string{
	StatusPending:   "📝",
	StatusPaid:      "✅",
	StatusShipped:   "🚛",
	StatusDelivered: "🎯",
}

var statusIcons = map[Status]string{
	StatusPending:   "⏳",
	StatusPaid:      "💳",
	StatusShipped:   "🚛",
	StatusDelivered: "✅",
	StatusCancelled: "❌",
}

// Step is one position on the tracking timeline.
type Step struct {
	Status      Status `json:"status"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Completed   bool   `json:"completed"`
	Current     bool   `json:"current"`
}

// Projection is what the tracking page renders for one order.
type Projection struct {
	Status      Status `json:"status"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsCancelled bool   `json:"isCancelled"`
	Steps       []Step `json:"steps"`
}

// Projector derives display progress from an order's status. It never
// infers a transition.
type Projector struct {
	translate func(i18n.Locale, string) string
}

func NewProjector() *Projector {
	return &Projector{translate: i18n.T}
}

func (p *Projector) Project(o *Order, locale i18n.Locale) Projection {
	status := o.Status
	proj := Projection{
		Status:      status,
		Label:       p.translate(locale, "status."+string(status)),
		Description: p.translate(locale, "status."+string(status)+".desc"),
		Icon:        statusIcon(status),
	}

	if status == StatusCancelled {
		proj.IsCancelled = true
		proj.Steps = []Step{}
		return proj
	}

	current := -1
	for i, s := range progression {
		if s == status {
			current = i
			break
		}
	}

	proj.Steps = make([]Step, len(progression))
	for i, s := range progression {
		proj.Steps[i] = Step{
			Status:      s,
			Label:       p.translate(locale, "step."+string(s)),
			Description: p.translate(locale, "status."+string(s)+".desc"),
			Icon:        stepIcons[s],
			Completed:   current >= 0 && i <= current,
			Current:     i == current,
		}
	}
	return proj
}

func statusIcon(s Status) string {
	if icon, ok := statusIcons[s]; ok {
		return icon
	}
	return "📦"
}
