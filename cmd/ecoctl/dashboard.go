package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ecosense/internal/client/auth"
	"github.com/bryanwahyu/ecosense/internal/client/dashboard"
	"github.com/bryanwahyu/ecosense/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive EcoSense dashboard",
	Long: `Open the terminal dashboard with the Solar, Carbon, Water and Challenges
modules. Any email and password sign in; accounts only live for the session.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	provider := auth.NewProvider(cfg.Client.SignInDelay, auth.WithLogger(logger))
	dash := dashboard.New(provider, newClient(), dashboard.Options{
		Interval:        cfg.Client.ProgressInterval,
		WaterGoalLitres: cfg.Client.WaterGoalLitres,
	})
	defer dash.Close()

	p := tea.NewProgram(ui.NewApp(ctx, provider, dash),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
