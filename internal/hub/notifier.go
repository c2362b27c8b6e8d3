package hub

import (
	"context"
	"errors"
	"strings"

	"github.com/presencewatch/presencewatch/internal/config"
	"github.com/presencewatch/presencewatch/internal/core/status"
	"github.com/presencewatch/presencewatch/internal/util"
)

// Fallback icons when the mapping has no entry for a key.
const (
	defaultStatusIcon   = "mdi:account"
	defaultActivityIcon = "mdi:phone-off"
)

// Notifier maps a status snapshot to the two hub entities and pushes them.
// The two updates are independent calls with no atomicity between them; each
// failure is logged on its own and the notifier carries on.
type Notifier struct {
	client   *Client
	status   config.EntityConfig
	activity config.EntityConfig
	labels   map[string]string
	icons    map[string]string
}

// NewNotifier wires a notifier from the client and the configured entity
// identifiers and mapping tables.
func NewNotifier(client *Client, cfg *config.Config) *Notifier {
	return &Notifier{
		client:   client,
		status:   cfg.Entities.Status,
		activity: cfg.Entities.Activity,
		labels:   cfg.Labels,
		icons:    cfg.Icons,
	}
}

// Publish pushes the snapshot as two entity updates. A partial failure
// leaves the other update in place; the joined error is returned so the
// caller can log the tick as failed.
func (n *Notifier) Publish(ctx context.Context, snap status.Snapshot) error {
	statusErr := n.client.UpdateState(ctx, n.status.ID, n.statusState(snap))
	if statusErr != nil {
		util.LogErrorf("Failed to update %s: %v", n.status.ID, statusErr)
	}

	activityErr := n.client.UpdateState(ctx, n.activity.ID, n.activityState(snap))
	if activityErr != nil {
		util.LogErrorf("Failed to update %s: %v", n.activity.ID, activityErr)
	}

	return errors.Join(statusErr, activityErr)
}

// statusState resolves the human label and icon for the availability value.
// Lookups are keyed by the lower-cased availability; unmapped values fall
// back to "unknown" and a generic icon.
func (n *Notifier) statusState(snap status.Snapshot) EntityState {
	label, ok := n.labels[strings.ToLower(snap.Availability)]
	if !ok {
		label = status.Unknown
	}
	icon, ok := n.icons[strings.ToLower(label)]
	if !ok {
		icon = defaultStatusIcon
	}
	return EntityState{
		State: label,
		Attributes: Attributes{
			FriendlyName: n.status.Name,
			Icon:         icon,
		},
	}
}

func (n *Notifier) activityState(snap status.Snapshot) EntityState {
	state := "not in a call"
	iconKey := "notinacall"
	if snap.CallStatus == status.CallInCall {
		state = "in a call"
		iconKey = "inacall"
	}
	icon, ok := n.icons[iconKey]
	if !ok {
		icon = defaultActivityIcon
	}
	return EntityState{
		State: state,
		Attributes: Attributes{
			FriendlyName: n.activity.Name,
			Icon:         icon,
		},
	}
}
