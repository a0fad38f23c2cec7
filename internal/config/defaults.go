package config

const (
	defaultInboxDir         = "~/mapwatch/inbox"
	defaultWorkspaceDir     = "~/mapwatch/archive"
	defaultDatabaseDir      = "~/.local/share/mapwatch/db"
	defaultLogDir           = "~/.local/share/mapwatch/logs"
	defaultRosterPath       = "~/.config/mapwatch/roster.toml"
	defaultStatusInterval   = 300
	defaultDeadline         = "23:00"
	defaultUrgentAfter      = "19:00"
	defaultUrgentRemaining  = 5
	defaultEventBuffer      = 256
	defaultStabilizeMS      = 500
	defaultStabilizeChecks  = 10
	defaultReminderInterval = 1800
	defaultFuzzyThreshold   = 0.65
	defaultLookbackDays     = 14
	defaultForwardDays      = 5
	defaultSearchWorkers    = 4
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:     defaultInboxDir,
			WorkspaceDir: defaultWorkspaceDir,
			DatabaseDir:  defaultDatabaseDir,
			LogDir:       defaultLogDir,
			RosterPath:   defaultRosterPath,
		},
		Monitor: Monitor{
			StatusInterval:   defaultStatusInterval,
			Deadline:         defaultDeadline,
			UrgentAfter:      defaultUrgentAfter,
			UrgentRemaining:  defaultUrgentRemaining,
			EventBuffer:      defaultEventBuffer,
			StabilizeMS:      defaultStabilizeMS,
			StabilizeChecks:  defaultStabilizeChecks,
			ReminderInterval: defaultReminderInterval,
		},
		Matching: Matching{
			FuzzyThreshold: defaultFuzzyThreshold,
			LookbackDays:   defaultLookbackDays,
			ForwardDays:    defaultForwardDays,
			Extensions:     []string{"kmz"},
			SearchWorkers:  defaultSearchWorkers,
		},
		Categories: []Category{
			{
				Name: "finished",
				Keywords: []string{
					"_finished_points_and_tracks_",
					"finished points and tracks",
					"finished_points",
					"points_tracks",
					"completed_points",
				},
				Suffix:  "finished_points_and_tracks",
				DirName: "Finished points",
			},
			{
				Name: "plan",
				Keywords: []string{
					"_plan_routes_",
					"plan routes",
					"planned_routes",
					"route_plan",
					"plan_route",
					"routes_planned",
				},
				Suffix:      "plan_routes",
				DirName:     "Planned routes",
				FutureDated: true,
			},
		},
		Notifications: Notifications{
			RequestTimeout: 10,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
