package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// uploadEntity, entryEntity, datasetEntity, and userEntity are the four
// document kinds behind the single-table DocumentStore, each with its own
// EntityConfig so GenericRepository can stay entity-agnostic.
type uploadEntity struct{ ID, UserID string }

func (e uploadEntity) GetID() string     { return e.ID }
func (e uploadEntity) GetUserID() string { return e.UserID }

type entryEntity struct{ ID, UserID string }

func (e entryEntity) GetID() string     { return e.ID }
func (e entryEntity) GetUserID() string { return e.UserID }

type datasetEntity struct{ ID, UserID string }

func (e datasetEntity) GetID() string     { return e.ID }
func (e datasetEntity) GetUserID() string { return e.UserID }

type userEntity struct{ ID, UserID string }

func (e userEntity) GetID() string     { return e.ID }
func (e userEntity) GetUserID() string { return e.UserID }

// uploadConfig implements EntityConfig[uploadEntity].
type uploadConfig struct{}

func (uploadConfig) BuildKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("UPLOAD#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}
func (uploadConfig) GetEntityType() string { return "UPLOAD" }
func (uploadConfig) ParseItem(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	return parseGenericItem(item)
}

type entryConfig struct{}

func (entryConfig) BuildKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("ENTRY#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}
func (entryConfig) GetEntityType() string { return "ENTRY" }
func (entryConfig) ParseItem(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	return parseGenericItem(item)
}

type datasetConfig struct{}

func (datasetConfig) BuildKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("DATASET#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}
func (datasetConfig) GetEntityType() string { return "DATASET" }
func (datasetConfig) ParseItem(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	return parseGenericItem(item)
}

type userConfig struct{}

func (userConfig) BuildKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", id)},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}
func (userConfig) GetEntityType() string { return "USER" }
func (userConfig) ParseItem(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	return parseGenericItem(item)
}

// parseGenericItem unmarshals a DynamoDB item into a plain document map,
// shared by every entity kind since this store never needs typed structs
// beyond the id fields used for keys (the application layer treats
// documents as generic maps throughout, spec.md §3).
func parseGenericItem(item map[string]types.AttributeValue) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	delete(doc, "PK")
	delete(doc, "SK")
	delete(doc, "GSI2PK")
	delete(doc, "GSI2SK")
	delete(doc, "EntityType")
	return doc, nil
}
