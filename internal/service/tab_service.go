package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/ninjatab/internal/models"
)

// CreateTab creates a tab together with its people.
func (s *TabService) CreateTab(ctx context.Context, req *connect.Request[CreateTabRequest]) (*connect.Response[CreateTabResponse], error) {
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("tab name is required"))
	}

	defaultCurrency := models.Currency(req.Msg.DefaultCurrency)
	if defaultCurrency == "" {
		defaultCurrency = models.GBP
	}
	if !defaultCurrency.IsValid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported default currency %q", req.Msg.DefaultCurrency))
	}
	settlementCurrency := models.Currency(req.Msg.SettlementCurrency)
	if settlementCurrency != "" && !settlementCurrency.IsValid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported settlement currency %q", req.Msg.SettlementCurrency))
	}

	people := make([]models.Person, 0, len(req.Msg.People))
	emails := make(map[string]bool)
	for _, p := range req.Msg.People {
		personName := strings.TrimSpace(p.Name)
		if personName == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("person name is required"))
		}
		email := strings.ToLower(strings.TrimSpace(p.Email))
		if email != "" {
			if emails[email] {
				return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("email %s is used twice on this tab", email))
			}
			emails[email] = true
		}
		people = append(people, models.Person{Name: personName, Email: email})
	}

	tab := &models.Tab{
		Name:               name,
		Description:        req.Msg.Description,
		DefaultCurrency:    defaultCurrency,
		SettlementCurrency: settlementCurrency,
		People:             people,
	}
	if err := s.store.CreateTab(ctx, tab); err != nil {
		slog.Error("CreateTab failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Tab created", "tab_id", tab.ID, "name", tab.Name, "people", len(tab.People))
	return connect.NewResponse(&CreateTabResponse{Tab: tabToMessage(tab)}), nil
}

// GetTab retrieves a tab with its people.
func (s *TabService) GetTab(ctx context.Context, req *connect.Request[GetTabRequest]) (*connect.Response[GetTabResponse], error) {
	if req.Msg.TabID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("tab_id is required"))
	}

	tab, err := s.store.GetTab(ctx, req.Msg.TabID)
	if err != nil {
		slog.Warn("GetTab failed", "tab_id", req.Msg.TabID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&GetTabResponse{Tab: tabToMessage(tab)}), nil
}

// ListTabs returns every tab, newest first.
func (s *TabService) ListTabs(ctx context.Context, req *connect.Request[ListTabsRequest]) (*connect.Response[ListTabsResponse], error) {
	tabs, err := s.store.ListTabs(ctx)
	if err != nil {
		slog.Error("ListTabs failed", "error", err)
		return nil, toConnectError(err)
	}

	result := make([]*Tab, len(tabs))
	for i, tab := range tabs {
		result[i] = tabToMessage(tab)
	}
	return connect.NewResponse(&ListTabsResponse{Tabs: result}), nil
}

// DeleteTab removes a tab with its people, bills and settlements.
func (s *TabService) DeleteTab(ctx context.Context, req *connect.Request[DeleteTabRequest]) (*connect.Response[DeleteTabResponse], error) {
	if req.Msg.TabID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("tab_id is required"))
	}

	unlock := s.locks.lock(req.Msg.TabID)
	err := s.store.DeleteTab(ctx, req.Msg.TabID)
	unlock()
	if err != nil {
		slog.Warn("DeleteTab failed", "tab_id", req.Msg.TabID, "error", err)
		return nil, toConnectError(err)
	}
	s.locks.forget(req.Msg.TabID)

	slog.Info("Tab deleted", "tab_id", req.Msg.TabID)
	return connect.NewResponse(&DeleteTabResponse{}), nil
}
