package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bcmimarlik/site/internal/model"
	"github.com/bcmimarlik/site/internal/render"
	"github.com/bcmimarlik/site/internal/service"
	"github.com/bcmimarlik/site/internal/session"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "site content commands",
}

func init() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(contentCmd)
	contentCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	contentCmd.AddCommand(getContentCmd())
	contentCmd.AddCommand(exportContentCmd())
	contentCmd.AddCommand(importContentCmd())
	contentCmd.AddCommand(setFieldCmd())
	contentCmd.AddCommand(setAddressCmd())
	contentCmd.AddCommand(addProjectCmd())
	contentCmd.AddCommand(removeProjectCmd())
	rootCmd.AddCommand(analyzeCmd())
}

func loginCmd() *cobra.Command {
	var password string

	var required = []string{"password"}

	command := &cobra.Command{
		Use:     "login",
		Short:   "log in to the admin api",
		Example: "site login -p <password>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			ctx := readContext()
			client := newClient()
			token, expiresAt, err := client.Login(context.Background(), password)
			if err != nil {
				logrus.Error(err)
				return
			}

			ctx.Server = resolveServer(ctx)
			ctx.Token = token
			ctx.ExpiresAt = ""
			if !expiresAt.IsZero() {
				ctx.ExpiresAt = expiresAt.Format(time.RFC3339)
			}
			writeContext(ctx)

			if token == "" {
				color.Yellow("the server does not require a login")
				return
			}
			color.Green("logged in until %s", ctx.ExpiresAt)
		},
	}

	command.Flags().StringVarP(&password, "password", "p", "", "admin password")

	return command
}

func getContentCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "get",
		Short: "show the site content",
		Run: func(cmd *cobra.Command, args []string) {
			doc, err := newClient().GetContent(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			printDocument(doc)
		},
	}

	return command
}

func exportContentCmd() *cobra.Command {
	var format string
	var output string

	command := &cobra.Command{
		Use:     "export",
		Short:   "export the site content as json or yaml",
		Example: "site content export -f yaml -o site.yaml",
		Run: func(cmd *cobra.Command, args []string) {
			doc, err := newClient().GetContent(context.Background())
			if err != nil {
				logrus.Error(err)
				return
			}

			data, err := encodeDocument(doc, format)
			if err != nil {
				logrus.Error(err)
				return
			}

			if output == "" {
				fmt.Print(string(data))
				return
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				logrus.Error(err)
				return
			}
			color.Green("content written to %s", output)
		},
	}

	command.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	command.Flags().StringVarP(&output, "output", "o", "", "output file")

	return command
}

func importContentCmd() *cobra.Command {
	var input string

	var required = []string{"input"}

	command := &cobra.Command{
		Use:     "import",
		Short:   "replace the site content with a json or yaml file",
		Example: "site content import -i site.yaml",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			data, err := os.ReadFile(input)
			if err != nil {
				logrus.Error(err)
				return
			}

			doc, err := decodeDocument(data, formatOf(input))
			if err != nil {
				logrus.Error(err)
				return
			}

			if err := newClient().SaveContent(context.Background(), doc); err != nil {
				logrus.Error(err)
				return
			}
			color.Green("content imported with %d projects", len(doc.Projects))
		},
	}

	command.Flags().StringVarP(&input, "input", "i", "", "input file (.json, .yaml or .yml)")

	return command
}

func setFieldCmd() *cobra.Command {
	var path string
	var value string

	var required = []string{"path", "value"}

	command := &cobra.Command{
		Use:   "set",
		Short: "set one field of the site content",
		Long: `set one field of the site content. Paths are projects.<index>.<field>
(name, url, alt, hasVideo, inProgress), contact.phoneText, contact.emailText,
links.whatsappUrl and links.instagramUrl.`,
		Example: `site content set --path projects.0.name --value "Akyaka Evi"
site content set --path projects.1.inProgress --value true`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			var v any = value
			if strings.HasSuffix(path, ".hasVideo") || strings.HasSuffix(path, ".inProgress") {
				flag, err := strconv.ParseBool(value)
				if err != nil {
					color.Red("%s expects true or false", path)
					return
				}
				v = flag
			}

			editContent(func(s *session.Session) error {
				return s.UpdateField(path, v)
			})
		},
	}

	command.Flags().StringVar(&path, "path", "", "field path")
	command.Flags().StringVar(&value, "value", "", "new value")

	return command
}

func setAddressCmd() *cobra.Command {
	var lines []string

	var required = []string{"line"}

	command := &cobra.Command{
		Use:     "address",
		Short:   "replace the address lines",
		Example: `site content address -l "Akyaka Mahallesi" -l "" -l "Ula, Muğla"`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			editContent(func(s *session.Session) error {
				s.UpdateAddressLines(strings.Join(lines, "\n"))
				return nil
			})
		},
	}

	command.Flags().StringArrayVarP(&lines, "line", "l", nil, "address line, repeat for more lines")

	return command
}

func addProjectCmd() *cobra.Command {
	var name string
	var url string
	var alt string
	var video bool
	var inProgress bool

	command := &cobra.Command{
		Use:     "add-project",
		Short:   "append a project",
		Example: "site content add-project -n <name> -u <url> --video",
		Run: func(cmd *cobra.Command, args []string) {
			editContent(func(s *session.Session) error {
				project := s.AddProject()
				index := len(s.Snapshot().Projects) - 1

				fields := map[string]any{}
				if name != "" {
					fields["name"] = name
					fields["alt"] = name
				}
				if alt != "" {
					fields["alt"] = alt
				}
				if url != "" {
					fields["url"] = url
				}
				if video {
					fields["hasVideo"] = true
				}
				if inProgress {
					fields["inProgress"] = true
				}

				for field, v := range fields {
					if err := s.UpdateField(fmt.Sprintf("projects.%d.%s", index, field), v); err != nil {
						return err
					}
				}

				fmt.Println("new project id: ", project.ID)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&name, "name", "n", "", "project name")
	command.Flags().StringVarP(&url, "url", "u", "", "image or video url")
	command.Flags().StringVarP(&alt, "alt", "a", "", "alt text, defaults to the name")
	command.Flags().BoolVar(&video, "video", false, "the url is a video")
	command.Flags().BoolVar(&inProgress, "in-progress", false, "mark the project as in progress")

	return command
}

func removeProjectCmd() *cobra.Command {
	var index int

	var required = []string{"index"}

	command := &cobra.Command{
		Use:     "remove-project",
		Short:   "remove the project at an index",
		Example: "site content remove-project -i 0",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			editContent(func(s *session.Session) error {
				return s.RemoveProject(index)
			})
		},
	}

	command.Flags().IntVarP(&index, "index", "i", -1, "project index as shown by content get")

	return command
}

func analyzeCmd() *cobra.Command {
	var req service.AnalysisRequest

	var required = []string{"emotion", "material", "nature"}

	command := &cobra.Command{
		Use:     "analyze",
		Short:   "request an architectural analysis",
		Example: "site analyze -e huzur -m taş -n orman",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			res, err := newClient().Analyze(context.Background(), req)
			if err != nil {
				logrus.Error(err)
				return
			}

			if res.Source == service.SourceFallback {
				color.Yellow("source: %s", res.Source)
			} else {
				color.Green("source: %s", res.Source)
			}
			fmt.Println(res.Analysis)
		},
	}

	command.Flags().StringVarP(&req.Emotion, "emotion", "e", "", "the feeling the home should give")
	command.Flags().StringVarP(&req.Material, "material", "m", "", "preferred material")
	command.Flags().StringVarP(&req.Nature, "nature", "n", "", "relation to nature")

	return command
}

// editContent loads the content into an editing session, applies edit and
// commits the result.
func editContent(edit func(s *session.Session) error) {
	ctx := context.Background()

	s := session.New(newClient())
	if notice := s.Initialize(ctx); notice != "" {
		color.Red("%s", notice)
		return
	}

	if err := edit(s); err != nil {
		color.Red("%v", err)
		return
	}

	if !s.Dirty() {
		color.Yellow("nothing changed")
		return
	}

	result := s.Commit(ctx)
	if !result.OK() {
		color.Red("%s: %v", result.Status, result.Err)
		return
	}

	printDocument(s.Persisted())
	color.Green("content saved")
}

func printDocument(doc *model.SiteDocument) {
	view := render.Project(doc)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Index", "ID", "Name", "Media", "URL", "In Progress"})
	for i, p := range view.Projects {
		table.Append([]string{
			strconv.Itoa(i),
			strconv.Itoa(p.ID),
			p.Name,
			string(p.Kind),
			p.MediaURL,
			strconv.FormatBool(p.InProgress),
		})
	}
	table.Render()

	table = tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value", "Link"})
	for i, line := range view.AddressLines {
		table.Append([]string{fmt.Sprintf("address %d", i), line, ""})
	}
	table.Append([]string{"phone", view.Phone.Text, view.Phone.Href})
	table.Append([]string{"email", view.Email.Text, view.Email.Href})
	table.Append([]string{"whatsapp", doc.Links.WhatsappURL, view.WhatsappURL})
	table.Append([]string{"instagram", view.InstagramURL, view.InstagramURL})
	table.Render()
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func encodeDocument(doc *model.SiteDocument, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func decodeDocument(data []byte, format string) (*model.SiteDocument, error) {
	var doc model.SiteDocument

	var err error
	if format == "yaml" {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Yellow("provided: %s\n", provided)
		}
		return true
	}

	return false
}
