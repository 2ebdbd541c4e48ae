package handlers

import (
	"net/http"

	"numtree-backend/application/commands"
	"numtree-backend/application/commands/bus"
	"numtree-backend/application/queries"
	querybus "numtree-backend/application/queries/bus"
	"numtree-backend/domain/core/valueobjects"
	"numtree-backend/pkg/common"
	pkgerrors "numtree-backend/pkg/errors"
	"numtree-backend/pkg/utils"

	"go.uber.org/zap"
)

// TreeHandler handles tree and operation HTTP requests
type TreeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errs *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *TreeHandler {
	return &TreeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errs,
		logger:     logger,
	}
}

// CreateTreeRequest is the body of POST /api/trees. Pointers keep a
// literal 0 distinguishable from an absent field.
type CreateTreeRequest struct {
	StartingNumber *float64 `json:"startingNumber" validate:"required"`
}

// AddOperationRequest is the body of POST /api/trees/{id}/operations
type AddOperationRequest struct {
	Type              string   `json:"type" validate:"required"`
	RightNumber       *float64 `json:"rightNumber" validate:"required"`
	ParentOperationID *int64   `json:"parentOperationId"`
}

// ListTrees handles GET /api/trees
func (h *TreeHandler) ListTrees(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListTreesQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respond(w, http.StatusOK, result, h.logger)
}

// GetTree handles GET /api/trees/{id}
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	treeID, err := pathID(r, "id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetTreeQuery{TreeID: treeID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respond(w, http.StatusOK, result, h.logger)
}

// CreateTree handles POST /api/trees
func (h *TreeHandler) CreateTree(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req CreateTreeRequest
	if err := common.ParseJSONBody(w, r, &req, common.DefaultMaxBodyBytes); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	tree, err := h.commandBus.Send(r.Context(), commands.CreateTreeCommand{
		UserID:         user.UserID,
		StartingNumber: *req.StartingNumber,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Debug("Tree created",
		zap.Int64("user_id", user.UserID),
		zap.Float64("starting_number", *req.StartingNumber),
	)
	respond(w, http.StatusCreated, tree, h.logger)
}

// AddOperation handles POST /api/trees/{id}/operations
func (h *TreeHandler) AddOperation(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	treeID, err := pathID(r, "id")
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	var req AddOperationRequest
	if err := common.ParseJSONBody(w, r, &req, common.DefaultMaxBodyBytes); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	op, err := h.commandBus.Send(r.Context(), commands.AddOperationCommand{
		TreeID:            treeID,
		UserID:            user.UserID,
		Type:              valueobjects.OperationType(req.Type),
		RightNumber:       *req.RightNumber,
		ParentOperationID: req.ParentOperationID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	respond(w, http.StatusCreated, map[string]interface{}{"operation": op}, h.logger)
}
