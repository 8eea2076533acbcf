package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	pages       map[string]*apigateway.GetRestApisOutput
	stages      []types.Stage
	stagesErr   error
	putErr      error
	deployErr   error
	puts        []*apigateway.PutRestApiInput
	deployments []*apigateway.CreateDeploymentInput
}

func (f *fakeAPI) GetRestApis(_ context.Context, in *apigateway.GetRestApisInput, _ ...func(*apigateway.Options)) (*apigateway.GetRestApisOutput, error) {
	page, ok := f.pages[aws.ToString(in.Position)]
	if !ok {
		return nil, errors.New("unexpected position")
	}
	return page, nil
}

func (f *fakeAPI) GetStages(_ context.Context, _ *apigateway.GetStagesInput, _ ...func(*apigateway.Options)) (*apigateway.GetStagesOutput, error) {
	if f.stagesErr != nil {
		return nil, f.stagesErr
	}
	return &apigateway.GetStagesOutput{Item: f.stages}, nil
}

func (f *fakeAPI) PutRestApi(_ context.Context, in *apigateway.PutRestApiInput, _ ...func(*apigateway.Options)) (*apigateway.PutRestApiOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &apigateway.PutRestApiOutput{Id: in.RestApiId}, nil
}

func (f *fakeAPI) CreateDeployment(_ context.Context, in *apigateway.CreateDeploymentInput, _ ...func(*apigateway.Options)) (*apigateway.CreateDeploymentOutput, error) {
	f.deployments = append(f.deployments, in)
	if f.deployErr != nil {
		return nil, f.deployErr
	}
	return &apigateway.CreateDeploymentOutput{Id: aws.String("dep-1")}, nil
}

func apiError(status int, code, requestID string) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      &smithy.GenericAPIError{Code: code, Message: "boom"},
		},
		RequestID: requestID,
	}
}

func TestAWSClient_ListAPIsPaginates(t *testing.T) {
	fake := &fakeAPI{pages: map[string]*apigateway.GetRestApisOutput{
		"": {
			Items:    []types.RestApi{{Id: aws.String("a1"), Name: aws.String("alpha")}},
			Position: aws.String("p2"),
		},
		"p2": {
			Items: []types.RestApi{{Id: aws.String("b2"), Name: aws.String("beta")}},
		},
	}}

	apis, err := newAWSClient(fake, nil).ListAPIs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []API{{ID: "a1", Name: "alpha"}, {ID: "b2", Name: "beta"}}, apis)
	assert.Equal(t, "alpha (a1)", apis[0].String())
}

func TestAWSClient_ListStages(t *testing.T) {
	fake := &fakeAPI{stages: []types.Stage{
		{StageName: aws.String("dev"), DeploymentId: aws.String("d1")},
		{StageName: aws.String("qa")},
	}}

	stages, err := newAWSClient(fake, nil).ListStages(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, []Stage{{Name: "dev", DeploymentID: "d1"}, {Name: "qa"}}, stages)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "dev (deployment d1)", Stage{Name: "dev", DeploymentID: "d1"}.String())
	assert.Equal(t, "qa", Stage{Name: "qa"}.String())
}

func TestAWSClient_OverwriteAPI(t *testing.T) {
	fake := &fakeAPI{}
	body := []byte(`{"openapi":"3.0.0"}`)

	require.NoError(t, newAWSClient(fake, nil).OverwriteAPI(context.Background(), "a1", body))
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "a1", aws.ToString(fake.puts[0].RestApiId))
	assert.Equal(t, types.PutModeOverwrite, fake.puts[0].Mode)
	assert.Equal(t, body, fake.puts[0].Body)
}

func TestAWSClient_CreateDeployment(t *testing.T) {
	fake := &fakeAPI{}
	c := newAWSClient(fake, nil)
	c.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	id, err := c.CreateDeployment(context.Background(), "a1", "dev")
	require.NoError(t, err)
	assert.Equal(t, "dep-1", id)
	require.Len(t, fake.deployments, 1)
	assert.Equal(t, "dev", aws.ToString(fake.deployments[0].StageName))
	assert.Equal(t, "gwspec deployment 2026-01-02T03:04:05Z", aws.ToString(fake.deployments[0].Description))
}

func TestAWSClient_RemoteErrorContext(t *testing.T) {
	fake := &fakeAPI{putErr: apiError(429, "TooManyRequestsException", "req-123")}

	err := newAWSClient(fake, nil).OverwriteAPI(context.Background(), "a1", nil)

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "import api", re.Op)
	assert.Equal(t, "a1", re.Resource)
	assert.Equal(t, 429, re.StatusCode)
	assert.Equal(t, "req-123", re.RequestID)
	assert.Equal(t, "TooManyRequestsException", re.Code)
	assert.Contains(t, err.Error(), "request id req-123")
	assert.Len(t, fake.puts, 1, "no retries")
}

func TestAWSClient_DeployErrorNamesStage(t *testing.T) {
	fake := &fakeAPI{deployErr: errors.New("connection reset")}

	_, err := newAWSClient(fake, nil).CreateDeployment(context.Background(), "a1", "dev")

	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "deploy api", re.Op)
	assert.Equal(t, "a1/dev", re.Resource)
	assert.Equal(t, "deploy api a1/dev: connection reset", err.Error())
}

func TestNewAWSClient_RequiresRegion(t *testing.T) {
	_, err := NewAWSClient(context.Background(), Options{})
	assert.Error(t, err)
}
