package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"
)

const pageSize int32 = 500

// managementAPI is the slice of the SDK client the publisher calls.
type managementAPI interface {
	apigateway.GetRestApisAPIClient
	GetStages(ctx context.Context, params *apigateway.GetStagesInput, optFns ...func(*apigateway.Options)) (*apigateway.GetStagesOutput, error)
	PutRestApi(ctx context.Context, params *apigateway.PutRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.PutRestApiOutput, error)
	CreateDeployment(ctx context.Context, params *apigateway.CreateDeploymentInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateDeploymentOutput, error)
}

type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Logger          *slog.Logger
}

type AWSClient struct {
	api managementAPI
	log *slog.Logger
	now func() time.Time
}

// NewAWSClient builds a client for the API Gateway management API. Static
// credentials are used when both halves are given, otherwise the SDK default
// chain applies. SDK retries are disabled.
func NewAWSClient(ctx context.Context, opts Options) (*AWSClient, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("gateway: region is required")
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("gateway: load aws config: %w", err)
	}
	return newAWSClient(apigateway.NewFromConfig(cfg), opts.Logger), nil
}

func newAWSClient(api managementAPI, log *slog.Logger) *AWSClient {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AWSClient{api: api, log: log, now: time.Now}
}

func (c *AWSClient) ListAPIs(ctx context.Context) ([]API, error) {
	var out []API
	p := apigateway.NewGetRestApisPaginator(c.api, &apigateway.GetRestApisInput{Limit: aws.Int32(pageSize)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, newRemoteError("list apis", "", err)
		}
		for _, item := range page.Items {
			out = append(out, API{ID: aws.ToString(item.Id), Name: aws.ToString(item.Name)})
		}
	}
	c.log.Debug("listed rest apis", "count", len(out))
	return out, nil
}

func (c *AWSClient) ListStages(ctx context.Context, apiID string) ([]Stage, error) {
	res, err := c.api.GetStages(ctx, &apigateway.GetStagesInput{RestApiId: aws.String(apiID)})
	if err != nil {
		return nil, newRemoteError("list stages", apiID, err)
	}
	out := make([]Stage, 0, len(res.Item))
	for _, s := range res.Item {
		out = append(out, Stage{Name: aws.ToString(s.StageName), DeploymentID: aws.ToString(s.DeploymentId)})
	}
	c.log.Debug("listed stages", "api_id", apiID, "count", len(out))
	return out, nil
}

// OverwriteAPI replaces the whole REST API definition with body.
func (c *AWSClient) OverwriteAPI(ctx context.Context, apiID string, body []byte) error {
	_, err := c.api.PutRestApi(ctx, &apigateway.PutRestApiInput{
		RestApiId: aws.String(apiID),
		Mode:      types.PutModeOverwrite,
		Body:      body,
	})
	if err != nil {
		return newRemoteError("import api", apiID, err)
	}
	c.log.Info("api definition overwritten", "api_id", apiID, "bytes", len(body))
	return nil
}

func (c *AWSClient) CreateDeployment(ctx context.Context, apiID, stage string) (string, error) {
	res, err := c.api.CreateDeployment(ctx, &apigateway.CreateDeploymentInput{
		RestApiId:   aws.String(apiID),
		StageName:   aws.String(stage),
		Description: aws.String("gwspec deployment " + c.now().UTC().Format(time.RFC3339)),
	})
	if err != nil {
		return "", newRemoteError("deploy api", apiID+"/"+stage, err)
	}
	id := aws.ToString(res.Id)
	c.log.Info("api deployed", "api_id", apiID, "stage", stage, "deployment_id", id)
	return id, nil
}
