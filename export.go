package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	skip2 "github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/cristianadrielbraun/qrfusion/internal/logo"
	"github.com/cristianadrielbraun/qrfusion/internal/render"
	"github.com/cristianadrielbraun/qrfusion/internal/settings"
)

func newExportCmd() *cobra.Command {
	var (
		settingsFile string
		logoFile     string
		data         string
		out          string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a styled QR code to a PNG file",
		Long: `Render a styled QR code without the web UI.

Settings are read from a YAML file whose keys are the configurator's field
names (data, level, size, padding, borderWidth, ...). Values are clamped the
same way as in the web UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := settings.Default()
			if settingsFile != "" {
				f, err := os.Open(settingsFile)
				if err != nil {
					return err
				}
				s, err = settings.Decode(f)
				_ = f.Close()
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("data") {
				u, _ := settings.Sanitize(settings.FieldData, data)
				s = s.With(u)
			}
			if logoFile != "" {
				f, err := os.Open(logoFile)
				if err != nil {
					return err
				}
				src, err := logo.Read(f, 0)
				_ = f.Close()
				if err != nil {
					return fmt.Errorf("logo %s: %w", logoFile, err)
				}
				s = s.WithLogo(src)
			}
			if !s.Exportable() {
				return fmt.Errorf("nothing to export: data is empty")
			}

			p, err := render.Compose(s)
			if err != nil {
				return err
			}
			img, err := render.Export(p)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := render.EncodePNG(&buf, img); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", out, p.Layout.Edge, p.Layout.Edge)
			if s.LowLevelForLogo() {
				fmt.Fprintln(cmd.ErrOrStderr(), "tip: for logos use error correction H or Q")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&settingsFile, "settings", "s", "", "YAML settings file")
	cmd.Flags().StringVar(&logoFile, "logo", "", "logo image (PNG, JPEG or SVG)")
	cmd.Flags().StringVarP(&data, "data", "d", "", "content to encode, overrides the settings file")
	cmd.Flags().StringVarP(&out, "out", "o", "qr-fusion-code.png", "output file")
	return cmd
}

func newPreviewCmd() *cobra.Command {
	var (
		data  string
		level string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print a QR code to the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := settings.ParseLevel(level)
			if err != nil {
				return err
			}
			text, err := terminalQR(data, l)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVarP(&data, "data", "d", settings.DefaultData, "content to encode")
	cmd.Flags().StringVarP(&level, "level", "l", string(settings.DefaultLevel), "error correction level (L, M, Q, H)")
	return cmd
}

// terminalQR draws data with half-block characters, two module rows per line.
func terminalQR(data string, l settings.Level) (string, error) {
	if strings.TrimSpace(data) == "" {
		return "", render.ErrEmptyData
	}
	q, err := skip2.New(data, skip2Level(l))
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return q.ToSmallString(false), nil
}

func skip2Level(l settings.Level) skip2.RecoveryLevel {
	switch l {
	case settings.LevelLow:
		return skip2.Low
	case settings.LevelMedium:
		return skip2.Medium
	case settings.LevelQuartile:
		return skip2.High
	default:
		return skip2.Highest
	}
}
