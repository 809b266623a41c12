package commands

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/edgard/audiorelay/internal/relay"
	"github.com/edgard/audiorelay/internal/server"
)

type sendOptions struct {
	file     string
	message  string
	fileName string
	student  relay.StudentInfo
	set      string
}

// send --file <path> --message <text>: relay a local recording through
// the same pipeline as the HTTP endpoint.
func sendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Relay a local audio file to the configured chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}

			res := appCtx.Relay.Relay(cmd.Context(), req)
			out := server.Response{
				Success:   res.Success,
				MessageID: res.MessageID,
				Delivery:  &server.Delivery{Text: res.Text, Audio: res.Audio},
			}
			if res.Err != nil {
				out.Error = res.Err.Error()
			} else {
				out.Message = relay.SuccessMessage
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			return res.Err
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "audio file to send")
	cmd.Flags().StringVarP(&opts.message, "message", "m", "", "text message sent before the audio")
	cmd.Flags().StringVar(&opts.fileName, "name", "", "attachment filename (default: base name of --file)")
	cmd.Flags().StringVar(&opts.student.FirstName, "first-name", "", "student first name")
	cmd.Flags().StringVar(&opts.student.Surname, "surname", "", "student surname")
	cmd.Flags().StringVar(&opts.student.Group, "group", "", "student group")
	cmd.Flags().StringVar(&opts.student.Date, "date", "", "recording date")
	cmd.Flags().StringVar(&opts.student.Time, "time", "", "recording time")
	cmd.Flags().StringVar(&opts.set, "set", "", "exercise set name")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func (o sendOptions) request() (relay.Request, error) {
	data, err := os.ReadFile(o.file)
	if err != nil {
		return relay.Request{}, fmt.Errorf("failed to read audio file: %w", err)
	}

	req := relay.Request{
		Message:  o.message,
		Audio:    base64.StdEncoding.EncodeToString(data),
		FileName: o.fileName,
	}
	if req.FileName == "" {
		req.FileName = filepath.Base(o.file)
	}
	if o.student != (relay.StudentInfo{}) {
		student := o.student
		req.StudentInfo = &student
	}
	if o.set != "" {
		req.SetInfo = &relay.SetInfo{Name: o.set}
	}
	return req, nil
}
