package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mukhoplus/Masked-StarCraft/models"
)

func newPlayerFixture() (*fakePlayerRepo, *recordingNotifier, *PlayerService) {
	players := newFakePlayerRepo()
	notifier := &recordingNotifier{}
	return players, notifier, NewPlayerService(players, notifier, discardLogger())
}

func TestPlayerListMasksNames(t *testing.T) {
	players, _, svc := newPlayerFixture()
	players.add(models.Player{Name: "Lim Yo-hwan", Nickname: "Boxer", Race: "T", Role: models.RolePlayer, Status: models.PlayerActive})
	players.add(models.Player{Name: "Operator", Nickname: "admin", Race: "T", Role: models.RoleAdmin, Status: models.PlayerActive})
	ctx := context.Background()

	masked, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(masked) != 1 {
		t.Fatalf("admins must not appear on the roster, got %d entries", len(masked))
	}
	if masked[0].Name != "" {
		t.Fatalf("masked roster leaked a real name: %q", masked[0].Name)
	}

	unmasked, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if unmasked[0].Name != "Lim Yo-hwan" {
		t.Fatalf("expected real name for admins, got %q", unmasked[0].Name)
	}
}

func TestPlayerRetire(t *testing.T) {
	players, notifier, svc := newPlayerFixture()
	p := players.add(models.Player{Nickname: "Boxer", Role: models.RolePlayer, Status: models.PlayerActive})
	admin := players.add(models.Player{Nickname: "admin", Role: models.RoleAdmin, Status: models.PlayerActive})
	ctx := context.Background()

	if err := svc.Retire(ctx, p.ID); err != nil {
		t.Fatalf("Retire: %v", err)
	}
	if players.players[p.ID].Status != models.PlayerRetired {
		t.Fatal("player was not retired")
	}
	if len(notifier.events) != 1 || notifier.events[0].Type != EventStateChanged {
		t.Fatalf("expected one STATE_CHANGED event, got %+v", notifier.events)
	}

	if err := svc.Retire(ctx, admin.ID); !errors.Is(err, ErrAdminNotRetirable) {
		t.Fatalf("expected ErrAdminNotRetirable, got %v", err)
	}
	if err := svc.Retire(ctx, 99); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestPlayerRetireAllSparesAdmins(t *testing.T) {
	players, _, svc := newPlayerFixture()
	players.add(models.Player{Nickname: "Boxer", Role: models.RolePlayer, Status: models.PlayerActive})
	players.add(models.Player{Nickname: "Tyrant", Role: models.RolePlayer, Status: models.PlayerActive})
	admin := players.add(models.Player{Nickname: "admin", Role: models.RoleAdmin, Status: models.PlayerActive})

	if err := svc.RetireAll(context.Background()); err != nil {
		t.Fatalf("RetireAll: %v", err)
	}
	for id, p := range players.players {
		if id == admin.ID {
			if p.Status != models.PlayerActive {
				t.Fatal("admin must survive a roster clear")
			}
			continue
		}
		if p.Status != models.PlayerRetired {
			t.Fatalf("player %d was not retired", id)
		}
	}
}
