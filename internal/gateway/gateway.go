package gateway

import (
	"context"
	"errors"
	"fmt"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
)

type API struct {
	ID   string
	Name string
}

func (a API) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.ID)
}

type Stage struct {
	Name         string
	DeploymentID string
}

// String labels a stage with the deployment it currently serves.
func (s Stage) String() string {
	if s.DeploymentID == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (deployment %s)", s.Name, s.DeploymentID)
}

// Client is the subset of the gateway management API used for publishing.
// Implementations never retry.
type Client interface {
	ListAPIs(ctx context.Context) ([]API, error)
	ListStages(ctx context.Context, apiID string) ([]Stage, error)
	OverwriteAPI(ctx context.Context, apiID string, body []byte) error
	CreateDeployment(ctx context.Context, apiID, stage string) (string, error)
}

// RemoteError carries enough context to diagnose a failed management call.
type RemoteError struct {
	Op         string
	Resource   string
	RequestID  string
	StatusCode int
	Code       string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := e.Op
	if e.Resource != "" {
		msg += " " + e.Resource
	}
	msg += ": " + e.Err.Error()
	if e.Code != "" {
		msg += " (code " + e.Code + ")"
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" [http %d", e.StatusCode)
		if e.RequestID != "" {
			msg += ", request id " + e.RequestID
		}
		msg += "]"
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Err }

func newRemoteError(op, resource string, err error) *RemoteError {
	re := &RemoteError{Op: op, Resource: resource, Err: err}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		re.RequestID = respErr.ServiceRequestID()
		re.StatusCode = respErr.HTTPStatusCode()
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		re.Code = apiErr.ErrorCode()
	}
	return re
}
