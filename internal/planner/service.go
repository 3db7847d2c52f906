// AngelaMos | 2026
// service.go

package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/taskboard/internal/core"
)

var ErrCycle = errors.New("move would create a cycle")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create appends the task to the end of its sibling list.
func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateTaskRequest,
) (*Task, error) {
	state := StatePending
	if req.State != nil {
		state = *req.State
	}
	if !ValidState(state) {
		return nil, fmt.Errorf("create planner task: state %d: %w", state, core.ErrInvalidInput)
	}

	t := &Task{
		ID:       uuid.New().String(),
		UserID:   userID,
		ParentID: req.ParentID,
		Title:    strings.TrimSpace(req.Title),
		Notes:    req.Notes,
		State:    state,
		DueDate:  req.DueDate,
	}

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if t.ParentID != nil {
			if _, err := tx.GetByID(ctx, userID, *t.ParentID); err != nil {
				return fmt.Errorf("parent: %w", err)
			}
		}

		n, err := tx.CountSiblings(ctx, userID, t.ParentID)
		if err != nil {
			return err
		}
		t.OrderIndex = n

		return tx.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Task, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// ListChildren returns the ordered children of parentID, or the user's
// roots when parentID is nil.
func (s *Service) ListChildren(
	ctx context.Context,
	userID string,
	parentID *string,
) ([]Task, error) {
	if parentID != nil {
		if _, err := s.repo.GetByID(ctx, userID, *parentID); err != nil {
			return nil, err
		}
	}

	return s.repo.ListSiblings(ctx, userID, parentID)
}

func (s *Service) Update(
	ctx context.Context,
	userID, id string,
	req UpdateTaskRequest,
) (*Task, error) {
	if req.State != nil && !ValidState(*req.State) {
		return nil, fmt.Errorf("update planner task: state %d: %w", *req.State, core.ErrInvalidInput)
	}

	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Notes != nil {
		t.Notes = *req.Notes
	}
	if req.State != nil {
		t.State = *req.State
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.ClearDueDate {
		t.DueDate = nil
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Reparent moves a task under newParentID, or to the roots when it is nil.
// The move is refused when newParentID is the task itself or one of its
// descendants. The task lands at the end of its new sibling list.
func (s *Service) Reparent(
	ctx context.Context,
	userID, id string,
	newParentID *string,
) (_ *Task, err error) {
	ctx, span := core.StartSpan(ctx, "planner.reparent", attribute.String("planner.task_id", id))
	defer func() {
		if err != nil {
			core.SetSpanError(ctx, err)
		}
		span.End()
	}()

	var moved *Task

	err = s.repo.InTx(ctx, func(tx Repository) error {
		t, err := tx.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		if t.HasParent(newParentID) {
			moved = t
			return nil
		}

		if newParentID != nil {
			if _, err := tx.GetByID(ctx, userID, *newParentID); err != nil {
				return fmt.Errorf("new parent: %w", err)
			}
			if err := checkAncestry(ctx, tx, userID, id, *newParentID); err != nil {
				return err
			}
		}

		n, err := tx.CountSiblings(ctx, userID, newParentID)
		if err != nil {
			return err
		}

		t.ParentID = newParentID
		t.OrderIndex = n
		if err := tx.Update(ctx, t); err != nil {
			return err
		}

		moved = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return moved, nil
}

// checkAncestry walks parent pointers upward from newParentID. Meeting
// taskID means newParentID lies inside taskID's subtree; meeting any id
// twice means the stored chain is already cyclic.
func checkAncestry(
	ctx context.Context,
	repo Repository,
	userID, taskID, newParentID string,
) error {
	if taskID == newParentID {
		return fmt.Errorf("move %s under itself: %w", taskID, ErrCycle)
	}

	visited := make(map[string]struct{})
	current := newParentID
	defer func() {
		core.AddSpanEvent(ctx, "planner.ancestry_walked",
			attribute.Int("planner.chain_length", len(visited)))
	}()

	for {
		if current == taskID {
			return fmt.Errorf("move %s under its descendant %s: %w", taskID, newParentID, ErrCycle)
		}
		if _, seen := visited[current]; seen {
			return fmt.Errorf("ancestor chain of %s loops at %s: %w", newParentID, current, ErrCycle)
		}
		visited[current] = struct{}{}

		parent, err := repo.GetParentID(ctx, userID, current)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}
		current = *parent
	}
}

// Delete removes the task and all of its descendants atomically. Unknown
// ids are a no-op.
func (s *Service) Delete(ctx context.Context, userID, id string) (int64, error) {
	ctx, span := core.StartSpan(ctx, "planner.delete_subtree", attribute.String("planner.task_id", id))
	defer span.End()

	var deleted int64

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if _, err := tx.GetByID(ctx, userID, id); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil
			}
			return err
		}

		ids, err := collectSubtree(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		n, err := tx.DeleteIDs(ctx, userID, ids)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return 0, err
	}

	span.SetAttributes(attribute.Int64("planner.deleted", deleted))
	return deleted, nil
}

// collectSubtree returns rootID and every transitive child, breadth first.
func collectSubtree(ctx context.Context, repo Repository, userID, rootID string) ([]string, error) {
	seen := map[string]struct{}{rootID: {}}
	ids := []string{rootID}

	for i := 0; i < len(ids); i++ {
		children, err := repo.ListChildIDs(ctx, userID, ids[i])
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			ids = append(ids, child)
		}
	}

	return ids, nil
}

// Reorder rewrites the order of every sibling under parentID. orderedIDs
// must be a permutation of the current sibling set.
func (s *Service) Reorder(
	ctx context.Context,
	userID string,
	parentID *string,
	orderedIDs []string,
) ([]Task, error) {
	var result []Task

	err := s.repo.InTx(ctx, func(tx Repository) error {
		if parentID != nil {
			if _, err := tx.GetByID(ctx, userID, *parentID); err != nil {
				return fmt.Errorf("parent: %w", err)
			}
		}

		siblings, err := tx.ListSiblings(ctx, userID, parentID)
		if err != nil {
			return err
		}

		if err := samePermutation(siblings, orderedIDs); err != nil {
			return err
		}

		byID := make(map[string]Task, len(siblings))
		for _, sib := range siblings {
			byID[sib.ID] = sib
		}

		result = make([]Task, 0, len(orderedIDs))
		for i, id := range orderedIDs {
			if err := tx.SetOrderIndex(ctx, userID, id, i); err != nil {
				return err
			}
			t := byID[id]
			t.OrderIndex = i
			result = append(result, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func samePermutation(siblings []Task, orderedIDs []string) error {
	if len(siblings) != len(orderedIDs) {
		return fmt.Errorf(
			"reorder: expected %d ids, got %d: %w",
			len(siblings),
			len(orderedIDs),
			core.ErrInvalidInput,
		)
	}

	want := make(map[string]struct{}, len(siblings))
	for _, sib := range siblings {
		want[sib.ID] = struct{}{}
	}

	for _, id := range orderedIDs {
		if _, ok := want[id]; !ok {
			return fmt.Errorf("reorder: %s is not a sibling or is repeated: %w", id, core.ErrInvalidInput)
		}
		delete(want, id)
	}

	return nil
}

type Node struct {
	Task
	Children []*Node
}

// GetTree returns the user's forest with children nested under parents and
// every level ordered by order index.
func (s *Service) GetTree(ctx context.Context, userID string) ([]*Node, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return BuildTree(tasks), nil
}

// BuildTree nests a flat task list. Tasks whose parent is absent from the
// list are treated as roots.
func BuildTree(tasks []Task) []*Node {
	nodes := make(map[string]*Node, len(tasks))
	for i := range tasks {
		nodes[tasks[i].ID] = &Node{Task: tasks[i]}
	}

	var roots []*Node
	for i := range tasks {
		n := nodes[tasks[i].ID]
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].OrderIndex != nodes[j].OrderIndex {
			return nodes[i].OrderIndex < nodes[j].OrderIndex
		}
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// ListDue returns planner tasks due in [from, to).
func (s *Service) ListDue(ctx context.Context, userID string, from, to time.Time) ([]Task, error) {
	return s.repo.ListDue(ctx, userID, from, to)
}
