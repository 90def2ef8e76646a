package chat

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/models"
	"github.com/dmitrijs2005/sigmax/internal/session"
	"github.com/dmitrijs2005/sigmax/internal/store"
)

// BlockUser adds targetID to the acting user's block list. Memberships
// and existing messages are left alone.
func (s *Service) BlockUser(ctx context.Context, sess session.Session, targetID string) (*models.User, error) {
	return s.block(ctx, sess, func(snap *store.Snapshot) (*models.User, bool) {
		u, ok := snap.Users[targetID]
		return u, ok
	}, targetID)
}

// BlockUserByPhone blocks the owner of handle.
func (s *Service) BlockUserByPhone(ctx context.Context, sess session.Session, handle string) (*models.User, error) {
	handle = strings.TrimSpace(handle)
	return s.block(ctx, sess, func(snap *store.Snapshot) (*models.User, bool) {
		return snap.UserByHandle(handle)
	}, handle)
}

func (s *Service) block(ctx context.Context, sess session.Session, lookup func(*store.Snapshot) (*models.User, bool), ref string) (*models.User, error) {
	var me *models.User
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		var err error
		if me, err = actor(snap, sess); err != nil {
			return nil, err
		}
		target, ok := lookup(snap)
		if !ok {
			return nil, fmt.Errorf("%w: user %s not found", common.ErrorNotFound, ref)
		}
		if target.ID == me.ID {
			return nil, fmt.Errorf("%w: cannot block yourself", common.ErrSelfLink)
		}
		if me.HasBlocked(target.ID) {
			return nil, nil
		}
		me.BlockedUserIDs = append(me.BlockedUserIDs, target.ID)
		return []store.Namespace{store.NamespaceUsers}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user blocked", "user", me.ID, "target", ref)
	return me.Public(), nil
}

// UnblockUser removes targetID from the acting user's block list.
func (s *Service) UnblockUser(ctx context.Context, sess session.Session, targetID string) (*models.User, error) {
	var me *models.User
	err := s.store.Update(ctx, func(snap *store.Snapshot) ([]store.Namespace, error) {
		var err error
		if me, err = actor(snap, sess); err != nil {
			return nil, err
		}
		if !me.HasBlocked(targetID) {
			return nil, nil
		}
		me.BlockedUserIDs = slices.DeleteFunc(me.BlockedUserIDs, func(id string) bool { return id == targetID })
		return []store.Namespace{store.NamespaceUsers}, nil
	})
	if err != nil {
		return nil, err
	}
	return me.Public(), nil
}
