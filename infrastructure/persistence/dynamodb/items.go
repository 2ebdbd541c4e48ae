package dynamodb

import (
	"fmt"
	"strconv"

	"numtree-backend/domain/core/entities"
	"numtree-backend/domain/core/valueobjects"
)

const (
	entityUser      = "USER"
	entityTree      = "TREE"
	entityOperation = "OPERATION"
	entityGuard     = "GUARD"

	treesPartition = "TREES"
	skProfile      = "PROFILE"
	skMetadata     = "METADATA"
	skUnique       = "UNIQUE"
	skOpPrefix     = "OP#"
)

func userPK(id int64) string { return "USER#" + strconv.FormatInt(id, 10) }
func emailPK(email string) string { return "EMAIL#" + email }
func usernamePK(name string) string { return "USERNAME#" + name }
func treePK(id int64) string { return "TREE#" + strconv.FormatInt(id, 10) }
func operationSK(id int64) string { return skOpPrefix + padID(id) }
func operationGSI1PK(id int64) string { return fmt.Sprintf("OPERATION#%d", id) }

// userItem represents the DynamoDB item structure for a user
type userItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     int64  `dynamodbav:"UserID"`
	Username   string `dynamodbav:"Username"`
	Email      string `dynamodbav:"Email"`
	Password   string `dynamodbav:"Password"`
	Role       string `dynamodbav:"Role"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

// guardItem reserves a unique username or email
type guardItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	UserID     int64  `dynamodbav:"UserID"`
}

// treeItem represents the DynamoDB item structure for a tree
type treeItem struct {
	PK             string  `dynamodbav:"PK"`
	SK             string  `dynamodbav:"SK"`
	GSI1PK         string  `dynamodbav:"GSI1PK"`
	GSI1SK         string  `dynamodbav:"GSI1SK"`
	EntityType     string  `dynamodbav:"EntityType"`
	TreeID         int64   `dynamodbav:"TreeID"`
	StartingNumber float64 `dynamodbav:"StartingNumber"`
	UserID         int64   `dynamodbav:"UserID"`
	CreatedAt      string  `dynamodbav:"CreatedAt"`
}

// operationItem represents the DynamoDB item structure for an operation
type operationItem struct {
	PK          string  `dynamodbav:"PK"`
	SK          string  `dynamodbav:"SK"`
	GSI1PK      string  `dynamodbav:"GSI1PK"`
	GSI1SK      string  `dynamodbav:"GSI1SK"`
	EntityType  string  `dynamodbav:"EntityType"`
	OperationID int64   `dynamodbav:"OperationID"`
	Type        string  `dynamodbav:"Type"`
	RightNumber float64 `dynamodbav:"RightNumber"`
	Result      float64 `dynamodbav:"Result"`
	TreeID      int64   `dynamodbav:"TreeID"`
	UserID      int64   `dynamodbav:"UserID"`
	ParentID    *int64  `dynamodbav:"ParentID,omitempty"`
	CreatedAt   string  `dynamodbav:"CreatedAt"`
}

func newUserItem(u *entities.User) userItem {
	return userItem{
		PK:         userPK(u.ID),
		SK:         skProfile,
		EntityType: entityUser,
		UserID:     u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Password:   u.PasswordHash,
		Role:       u.Role.String(),
		CreatedAt:  formatTime(u.CreatedAt),
		UpdatedAt:  formatTime(u.UpdatedAt),
	}
}

func (i userItem) toEntity() *entities.User {
	return &entities.User{
		ID:           i.UserID,
		Username:     i.Username,
		Email:        i.Email,
		PasswordHash: i.Password,
		Role:         valueobjects.Role(i.Role),
		CreatedAt:    parseTime(i.CreatedAt),
		UpdatedAt:    parseTime(i.UpdatedAt),
	}
}

func newTreeItem(t *entities.Tree) treeItem {
	return treeItem{
		PK:             treePK(t.ID),
		SK:             skMetadata,
		GSI1PK:         treesPartition,
		GSI1SK:         padID(t.ID),
		EntityType:     entityTree,
		TreeID:         t.ID,
		StartingNumber: t.StartingNumber,
		UserID:         t.UserID,
		CreatedAt:      formatTime(t.CreatedAt),
	}
}

func (i treeItem) toEntity() *entities.Tree {
	return &entities.Tree{
		ID:             i.TreeID,
		StartingNumber: i.StartingNumber,
		UserID:         i.UserID,
		CreatedAt:      parseTime(i.CreatedAt),
	}
}

func newOperationItem(o *entities.Operation) operationItem {
	return operationItem{
		PK:          treePK(o.TreeID),
		SK:          operationSK(o.ID),
		GSI1PK:      operationGSI1PK(o.ID),
		GSI1SK:      entityOperation,
		EntityType:  entityOperation,
		OperationID: o.ID,
		Type:        o.Type.String(),
		RightNumber: o.RightNumber,
		Result:      o.Result,
		TreeID:      o.TreeID,
		UserID:      o.UserID,
		ParentID:    o.ParentID,
		CreatedAt:   formatTime(o.CreatedAt),
	}
}

func (i operationItem) toEntity() entities.Operation {
	return entities.Operation{
		ID:          i.OperationID,
		Type:        valueobjects.OperationType(i.Type),
		RightNumber: i.RightNumber,
		Result:      i.Result,
		TreeID:      i.TreeID,
		UserID:      i.UserID,
		ParentID:    i.ParentID,
		CreatedAt:   parseTime(i.CreatedAt),
	}
}
