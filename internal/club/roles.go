// Package club derives membership state: ceremonial roles, possibly
// time-boxed, and the safe keys that gate privileged actions.
package club

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// ErrNoRole is returned by SetImage when the subject has no current role to
// attach the image to.
var ErrNoRole = errors.New("no role")

// Club answers role and key queries over the event log.
type Club struct {
	store store.Store

	// Now is the clock used for role expiry. Overridable in tests.
	Now func() time.Time
}

// New returns a Club over the given store.
func New(s store.Store) *Club {
	return &Club{store: s, Now: time.Now}
}

// SetRole assigns a role to the subject, replacing any current one. A nil
// until means the role does not expire.
func (c *Club) SetRole(ctx context.Context, subject int64, name, desc string, until *time.Time) error {
	ann := model.RoleAnnotation{Name: name, Desc: desc}
	if until != nil {
		ann.Until = until.Unix()
	}
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindRoleSet,
		Annotation: ann.Encode(),
	}
	if err := c.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("set role %q for %d: %w", name, subject, err)
	}
	return nil
}

// ClearRole removes the subject's role by writing an empty role-set.
func (c *Club) ClearRole(ctx context.Context, subject int64) error {
	return c.SetRole(ctx, subject, "", "", nil)
}

// SetImage attaches a picture reference to the subject's current role by
// re-appending the assignment with the image field. Name, description and
// expiry carry over unchanged. A fresh SetRole drops the image along with
// the rest of the old assignment.
func (c *Club) SetImage(ctx context.Context, subject int64, image string) (*model.Role, error) {
	role, err := c.Role(ctx, subject)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrNoRole
	}
	ann := model.RoleAnnotation{Name: role.Name, Desc: role.Desc, Image: image}
	if role.Until != nil {
		ann.Until = role.Until.Unix()
	}
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindRoleSet,
		Annotation: ann.Encode(),
	}
	if err := c.store.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("set role image for %d: %w", subject, err)
	}
	role.Image = image
	return role, nil
}

func (c *Club) roleFromEvent(ev *model.Event) *model.Role {
	ann := model.ParseRoleAnnotation(ev.Annotation)
	if ann.Name == "" {
		return nil
	}
	role := &model.Role{Subject: ev.SubjectID(), Name: ann.Name, Desc: ann.Desc, Image: ann.Image}
	if ann.Until > 0 {
		until := time.Unix(ann.Until, 0)
		if !c.Now().Before(until) {
			// Expiry is lazy: the grant stays in the log, it just stops
			// reading as a role.
			return nil
		}
		role.Until = &until
	}
	return role
}

// Role returns the subject's current role, nil when they have none or the
// latest assignment expired.
func (c *Club) Role(ctx context.Context, subject int64) (*model.Role, error) {
	ev, err := c.store.LastEvent(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindRoleSet},
		Subject: &subject,
	})
	if err != nil {
		return nil, fmt.Errorf("role of %d: %w", subject, err)
	}
	if ev == nil {
		return nil, nil
	}
	return c.roleFromEvent(ev), nil
}

// AllRoles lists every subject's current role, skipping cleared and expired
// ones.
func (c *Club) AllRoles(ctx context.Context) ([]*model.Role, error) {
	subjects, err := c.store.Subjects(ctx, model.KindRoleSet)
	if err != nil {
		return nil, fmt.Errorf("role subjects: %w", err)
	}
	var roles []*model.Role
	for _, subject := range subjects {
		role, err := c.Role(ctx, subject)
		if err != nil {
			return nil, err
		}
		if role != nil {
			roles = append(roles, role)
		}
	}
	return roles, nil
}
