package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/schedule"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// PlanEntry is one plan in a schedule input file.
type PlanEntry struct {
	Title string `yaml:"title" json:"title"`
}

// ScheduleReport is the JSON form of the schedule command output.
type ScheduleReport struct {
	Week  []WeekSlot   `json:"week"`
	Order []OrderEntry `json:"order"`
}

type WeekSlot struct {
	Weekday int    `json:"weekday"`
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"` // empty on rest days
}

type OrderEntry struct {
	SortKey int    `json:"sortKey"`
	Title   string `json:"title"`
}

var locales = map[string]schedule.Locale{
	"pt-BR": schedule.BrazilianPortuguese,
	"en":    schedule.English,
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		file   string
		locale string
	)

	cmd := &cobra.Command{
		Use:   "schedule --file plans.yaml",
		Short: "Resolve plan titles onto the week",
		Long: `Read a list of plans ({title: ...}) from a YAML or JSON file, bind them to
the seven weekday slots and print the display order with each sort key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, ok := locales[locale]
			if !ok {
				return fmt.Errorf("unknown locale %q", locale)
			}
			plans, err := loadPlans(file)
			if err != nil {
				return err
			}
			report := buildReport(schedule.NewResolver(loc), plans)
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeSchedule(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "plans file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&locale, "locale", "pt-BR", "title language (pt-BR|en)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func loadPlans(path string) ([]domain.WorkoutPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plans: %w", err)
	}

	var entries []PlanEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &entries)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("unsupported plans file %q: want .yaml, .yml or .json", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	plans := make([]domain.WorkoutPlan, len(entries))
	for i, e := range entries {
		plans[i] = domain.WorkoutPlan{Title: e.Title}
	}
	return plans, nil
}

func buildReport(r *schedule.Resolver, plans []domain.WorkoutPlan) ScheduleReport {
	var report ScheduleReport
	for _, slot := range r.Bind(plans) {
		ws := WeekSlot{Weekday: int(slot.Weekday), Name: slot.Name}
		if !slot.Empty() {
			ws.Title = slot.Plan.Title
		}
		report.Week = append(report.Week, ws)
	}
	report.Order = []OrderEntry{}
	for _, p := range r.Sort(plans) {
		report.Order = append(report.Order, OrderEntry{SortKey: r.SortKey(p.Title), Title: p.Title})
	}
	return report
}

func writeSchedule(w io.Writer, report ScheduleReport) error {
	var b strings.Builder
	b.WriteString("Weekly schedule\n")
	for _, s := range report.Week {
		title := s.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(&b, "  %-14s %s\n", s.Name, title)
	}
	b.WriteString("\nDisplay order\n")
	for _, o := range report.Order {
		fmt.Fprintf(&b, "  %-4d %s\n", o.SortKey, o.Title)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
