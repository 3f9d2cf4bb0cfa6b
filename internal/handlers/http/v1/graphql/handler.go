package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/gfdmit/web-forum/blog-service/internal/service"
)

type gqlHandler struct {
	svc    *service.Service
	logger *zap.Logger

	schema graphql.Schema
}

type request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

func New(svc *service.Service, logger *zap.Logger) (*gqlHandler, error) {
	gh := &gqlHandler{
		svc:    svc,
		logger: logger,
	}

	if err := gh.initSchema(); err != nil {
		return nil, err
	}

	return gh, nil
}

func (gh *gqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		gh.logger.Debug("malformed graphql request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorBody("request body must be a JSON object"))
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query is required"))
		return
	}

	res := graphql.Do(graphql.Params{
		Context:        r.Context(),
		Schema:         gh.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
	})
	writeJSON(w, http.StatusOK, res)
}

func errorBody(message string) map[string]interface{} {
	return map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
