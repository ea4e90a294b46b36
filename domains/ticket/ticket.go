package ticket

import "context"

type Ticket struct {
	ID         string `json:"id"`
	EpisodeID  string `json:"episode_id"`
	ActionItem string `json:"action_item"`
	TicketKey  string `json:"ticket_key"`
	TicketURL  string `json:"ticket_url"`
}

// BoardEntry pairs a stored ticket with its live status from the tracker.
type BoardEntry struct {
	Ticket
	Status string `json:"status"`
}

type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CreateTicketRequest struct {
	EpisodeID  string `json:"episode_id" form:"episode_id"`
	ActionItem string `json:"action_item" form:"action_item"`
}

type TransitionRequest struct {
	TransitionID string `json:"transition_id" form:"transition_id"`
}

type ITicketUsecase interface {
	Create(ctx context.Context, request CreateTicketRequest) (Ticket, error)
	List(ctx context.Context, episodeID string) ([]Ticket, error)
	Board(ctx context.Context) ([]BoardEntry, error)
	ListTransitions(ctx context.Context, id string) ([]Transition, error)
	Transition(ctx context.Context, id string, transitionID string) error
	Delete(ctx context.Context, id string) error
}
