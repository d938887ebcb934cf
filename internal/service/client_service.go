package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ovapp/sales-ledger/internal/model"
)

// ClientService owns the client directory. Clients referenced by contracts
// cannot be deleted.
type ClientService struct {
	repo Repository
	log  zerolog.Logger
}

func NewClientService(repo Repository, log zerolog.Logger) *ClientService {
	return &ClientService{repo: repo, log: log}
}

type ClientInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (s *ClientService) Create(ctx context.Context, input ClientInput) (*model.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}

	client := &model.Client{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}
	id, err := s.repo.CreateClient(ctx, client)
	if err != nil {
		return nil, err
	}
	client.ID = id
	return client, nil
}

func (s *ClientService) Get(ctx context.Context, id int64) (*model.Client, error) {
	client, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "client")
	}
	return client, nil
}

func (s *ClientService) List(ctx context.Context) ([]model.Client, error) {
	return s.repo.ListClients(ctx)
}

func (s *ClientService) Update(ctx context.Context, id int64, input ClientInput) (*model.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}

	client, err := s.repo.GetClient(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, "client")
	}
	client.Name = strings.TrimSpace(input.Name)
	client.Email = strings.TrimSpace(input.Email)
	client.Phone = strings.TrimSpace(input.Phone)
	client.Address = strings.TrimSpace(input.Address)

	if err := s.repo.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, id int64) error {
	return s.repo.Atomic(ctx, func(tx Repository) error {
		client, err := tx.GetClient(ctx, id)
		if err != nil {
			return mapStoreErr(err, "client")
		}
		contracts, err := tx.CountContractsByClient(ctx, id)
		if err != nil {
			return err
		}
		if contracts > 0 {
			return fmt.Errorf("%w: client %s has associated contracts", ErrInvalidTransition, client.Name)
		}
		return tx.DeleteClient(ctx, id)
	})
}

// Search matches name, email or phone, case-insensitively.
func (s *ClientService) Search(ctx context.Context, query string) ([]model.Client, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return clients, nil
	}

	matched := make([]model.Client, 0, len(clients))
	for _, client := range clients {
		if strings.Contains(strings.ToLower(client.Name), q) ||
			strings.Contains(strings.ToLower(client.Email), q) ||
			strings.Contains(client.Phone, strings.TrimSpace(query)) {
			matched = append(matched, client)
		}
	}
	return matched, nil
}

// Stats aggregates the client's contract portfolio.
func (s *ClientService) Stats(ctx context.Context, clientID int64) (*model.ClientStats, error) {
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return nil, mapStoreErr(err, "client")
	}

	contracts, err := s.repo.ListContractsByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	stats := &model.ClientStats{}
	for _, contract := range contracts {
		stats.TotalContracts++
		if contract.Status == model.ContractStatusActive {
			stats.ActiveContracts++
		}
		stats.TotalVolume += contract.TotalVolume
		stats.AttendedVolume += contract.AttendedVolume
	}
	stats.PendingVolume = stats.TotalVolume - stats.AttendedVolume
	return stats, nil
}
