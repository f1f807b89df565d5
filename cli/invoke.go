package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hsmtkk/turbo-octo-pancake/callback"
)

func newInvokeCmd(g *globalFlags) *cobra.Command {
	var (
		function      string
		channelSecret string
		replyToken    string
	)
	cmd := &cobra.Command{
		Use:   "invoke <text>",
		Short: "Send a signed text message event to the deployed query function",
		Long: `Send a signed text message event to the deployed query function.

The reply token is synthetic, so the LINE platform rejects the reply;
the function logs the answer and the rejection.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if channelSecret == "" {
				b, err := g.bundle(ctx)
				if err != nil {
					return err
				}
				channelSecret = b.ChannelSecret
			}
			if channelSecret == "" {
				return fmt.Errorf("a channel secret is needed: pass --channel-secret or --secret-arn")
			}
			if replyToken == "" {
				replyToken = uuid.NewString()
			}
			payload, err := proxyRequest(channelSecret, args[0], replyToken)
			if err != nil {
				return err
			}

			cfg, err := awsConfig(ctx)
			if err != nil {
				return err
			}
			result, err := lambda.NewFromConfig(cfg).Invoke(ctx, &lambda.InvokeInput{
				FunctionName: aws.String(function),
				Payload:      payload,
			})
			if err != nil {
				return fmt.Errorf("failed to invoke lambda function: %w", err)
			}
			if result.FunctionError != nil {
				return fmt.Errorf("lambda function returned an error: %s: %s", aws.ToString(result.FunctionError), result.Payload)
			}
			return printProxyResponse(cmd.OutOrStdout(), result.Payload)
		},
	}
	cmd.Flags().StringVar(&function, "function", "linerag-query", "name of the query function")
	cmd.Flags().StringVar(&channelSecret, "channel-secret", "", "channel secret used to sign the body")
	cmd.Flags().StringVar(&replyToken, "reply-token", "", "reply token put into the event")
	return cmd
}

// proxyRequest wraps a signed webhook body the way API Gateway hands it to
// the function.
func proxyRequest(channelSecret, text, replyToken string) ([]byte, error) {
	body, err := callback.TextMessageBody(text, replyToken)
	if err != nil {
		return nil, err
	}
	return json.Marshal(events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/callback",
		Headers: map[string]string{
			"Content-Type":           "application/json",
			callback.SignatureHeader: callback.Sign(channelSecret, body),
		},
		Body: string(body),
	})
}

func printProxyResponse(w io.Writer, payload []byte) error {
	var resp events.APIGatewayProxyResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return fmt.Errorf("failed to unmarshal response payload: %w", err)
	}
	fmt.Fprintf(w, "Status: %d\nBody: %s\n", resp.StatusCode, resp.Body)
	return nil
}
