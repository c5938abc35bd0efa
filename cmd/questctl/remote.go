package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/questkeeper/internal/client"
	"github.com/dmitrijs2005/questkeeper/internal/netx"
	"github.com/spf13/cobra"
)

// remoteFlags locate a running server and the caller's identity.
type remoteFlags struct {
	endpoint string
	token    string
}

func (f *remoteFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.endpoint, "endpoint", "localhost:50051", "questkeeper gRPC address")
	cmd.Flags().StringVar(&f.token, "token", os.Getenv("QUESTKEEPER_TOKEN"), "access token (defaults to $QUESTKEEPER_TOKEN)")
}

func (f *remoteFlags) dial() (*client.GRPCClient, error) {
	if f.token == "" {
		return nil, errors.New("--token is required")
	}
	return client.NewLifecycleClient(f.endpoint, f.token)
}

func newCallCmd() *cobra.Command {
	remote := &remoteFlags{}

	cmd := &cobra.Command{
		Use:   "call <method> [json]",
		Short: "Invoke a lifecycle method with a JSON request and print the JSON reply",
		Example: `  questctl call RequestValidation '{"character_id":3,"player_id":2}' --token $T
  questctl call ListMyCharacters --token $T`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := json.RawMessage(`{}`)
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("request is not valid JSON")
				}
				req = json.RawMessage(args[1])
			}

			c, err := remote.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			var reply json.RawMessage
			if err := c.Call(cmd.Context(), args[0], req, &reply); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(reply))
			return nil
		},
	}
	remote.bind(cmd)
	return cmd
}

func newPortraitCmd() *cobra.Command {
	portrait := &cobra.Command{
		Use:   "portrait",
		Short: "Upload or locate character portraits",
	}
	portrait.AddCommand(newPortraitUploadCmd(), newPortraitURLCmd())
	return portrait
}

func newPortraitUploadCmd() *cobra.Command {
	remote := &remoteFlags{}
	var (
		character int64
		path      string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Attach an image file as a character's portrait",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Presigned PUTs need a Content-Length, so the image is read whole.
			img, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			contentType := http.DetectContentType(img)

			c, err := remote.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			key, url, err := c.RequestPortraitUpload(cmd.Context(), character)
			if err != nil {
				return err
			}
			if err := netx.UploadToPresignedURL(cmd.Context(), url, bytes.NewReader(img), contentType); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	remote.bind(cmd)
	cmd.Flags().Int64Var(&character, "character", 0, "character id")
	cmd.Flags().StringVar(&path, "file", "", "image file")
	_ = cmd.MarkFlagRequired("character")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPortraitURLCmd() *cobra.Command {
	remote := &remoteFlags{}
	var character int64

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print a temporary download URL for a character's portrait",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := remote.dial()
			if err != nil {
				return err
			}
			defer c.Close()

			url, err := c.PortraitURL(cmd.Context(), character)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	remote.bind(cmd)
	cmd.Flags().Int64Var(&character, "character", 0, "character id")
	_ = cmd.MarkFlagRequired("character")
	return cmd
}
