package usecase

import (
	"context"
	"fmt"

	domainTicket "github.com/l0lsec/PodInsights/domains/ticket"
	"github.com/l0lsec/PodInsights/integrations/jira"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/repository"
	"github.com/l0lsec/PodInsights/validations"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type serviceTicket struct {
	repo repository.IContentRepository
	jira *jira.Client
}

func NewTicketService(repo repository.IContentRepository, jiraClient *jira.Client) domainTicket.ITicketUsecase {
	return &serviceTicket{repo: repo, jira: jiraClient}
}

func (service *serviceTicket) Create(ctx context.Context, request domainTicket.CreateTicketRequest) (domainTicket.Ticket, error) {
	if err := validations.ValidateCreateTicket(ctx, request); err != nil {
		return domainTicket.Ticket{}, err
	}
	if !service.jira.Configured() {
		return domainTicket.Ticket{}, pkgError.ValidationError("jira is not configured")
	}

	episode, err := service.repo.GetEpisode(ctx, request.EpisodeID)
	if err != nil {
		return domainTicket.Ticket{}, err
	}

	description := fmt.Sprintf("Action item from podcast episode %q.\n\nEpisode: %s", episode.Title, episode.URL)
	issue, err := service.jira.CreateIssue(ctx, request.ActionItem, description)
	if err != nil {
		return domainTicket.Ticket{}, err
	}

	ticket := domainTicket.Ticket{
		ID:         uuid.NewString(),
		EpisodeID:  episode.ID,
		ActionItem: request.ActionItem,
		TicketKey:  issue.Key,
		TicketURL:  issue.URL,
	}

	if err := service.repo.CreateTicket(ctx, ticket); err != nil {
		return domainTicket.Ticket{}, err
	}

	logrus.Infof("[TICKET] Created %s for episode %s", issue.Key, episode.ID)
	return ticket, nil
}

func (service *serviceTicket) List(ctx context.Context, episodeID string) ([]domainTicket.Ticket, error) {
	return service.repo.ListTickets(ctx, episodeID)
}

// Board returns all tickets with their live tracker status. A ticket whose
// status lookup fails still shows up, marked unknown, so one stale issue
// does not blank the whole board.
func (service *serviceTicket) Board(ctx context.Context) ([]domainTicket.BoardEntry, error) {
	tickets, err := service.repo.ListTickets(ctx, "")
	if err != nil {
		return nil, err
	}

	entries := make([]domainTicket.BoardEntry, 0, len(tickets))
	for _, ticket := range tickets {
		status := "unknown"
		if service.jira.Configured() {
			if live, err := service.jira.GetIssueStatus(ctx, ticket.TicketKey); err != nil {
				logrus.WithError(err).Warnf("[TICKET] Could not fetch status for %s", ticket.TicketKey)
			} else {
				status = live
			}
		}
		entries = append(entries, domainTicket.BoardEntry{Ticket: ticket, Status: status})
	}
	return entries, nil
}

func (service *serviceTicket) ListTransitions(ctx context.Context, id string) ([]domainTicket.Transition, error) {
	ticket, err := service.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	transitions, err := service.jira.ListTransitions(ctx, ticket.TicketKey)
	if err != nil {
		return nil, err
	}

	result := make([]domainTicket.Transition, 0, len(transitions))
	for _, tr := range transitions {
		result = append(result, domainTicket.Transition{ID: tr.ID, Name: tr.Name})
	}
	return result, nil
}

func (service *serviceTicket) Transition(ctx context.Context, id string, transitionID string) error {
	if transitionID == "" {
		return pkgError.ValidationError("transition_id is required")
	}

	ticket, err := service.repo.GetTicket(ctx, id)
	if err != nil {
		return err
	}

	if err := service.jira.TransitionIssue(ctx, ticket.TicketKey, transitionID); err != nil {
		return err
	}

	logrus.Infof("[TICKET] Transitioned %s via %s", ticket.TicketKey, transitionID)
	return nil
}

// Delete removes the local record only. The tracker issue stays.
func (service *serviceTicket) Delete(ctx context.Context, id string) error {
	if _, err := service.repo.GetTicket(ctx, id); err != nil {
		return err
	}
	return service.repo.DeleteTicket(ctx, id)
}
