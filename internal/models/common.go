package models

import "encoding/json"

// GraphQLError is one entry of an upstream error payload
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLEnvelope is the outer shape of every GraphQL response
type GraphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}
