package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"example.com/lifetrack/internal/client"
	"example.com/lifetrack/internal/domain"
	"example.com/lifetrack/internal/gamification"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"register":    {"create an account and sign in", cmdRegister},
	"login":       {"sign in and pull remote data", cmdLogin},
	"logout":      {"sign out and delete local data", cmdLogout},
	"status":      {"show session and activity overview", cmdStatus},
	"show":        {"print state as JSON (all, an activity, or gamification)", cmdShow},
	"add-hours":   {"log hours: add-hours <activity> <hours>", cmdAddHours},
	"add-minutes": {"log minutes toward today's goal: add-minutes <activity> <minutes>", cmdAddMinutes},
	"goal":        {"set the daily goal: goal <activity> <minutes>", cmdGoal},
	"hide":        {"hide a built-in activity", cmdHide},
	"restore":     {"restore a hidden activity", cmdRestore},
	"create":      {"create a custom activity: create <name> [--template t]", cmdCreate},
	"delete":      {"delete a custom activity by slug", cmdDelete},
	"template":    {"load a starter template and finish onboarding", cmdTemplate},
	"xp":          {"award XP: xp <activity> <amount>", cmdXP},
	"sync":        {"push local state to the server now", cmdSync},
	"export":      {"write the activity envelope to a file or stdout", cmdExport},
	"import":      {"replace local activity data from an exported file", cmdImport},
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func credentials(a *app, name string, args []string) (string, string, error) {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(a.errOut)
	password := flags.String("password", os.Getenv("LIFETRACK_PASSWORD"), "account password (prompted when empty)")
	if err := flags.Parse(args); err != nil {
		return "", "", err
	}
	if flags.NArg() != 1 {
		return "", "", fmt.Errorf("usage: lifectl %s <username> [--password p]", name)
	}
	if *password == "" {
		p, err := a.readLine("Password: ")
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		*password = p
	}
	return flags.Arg(0), *password, nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	return signIn(ctx, a, "register", args, a.client.Register)
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	return signIn(ctx, a, "login", args, a.client.Login)
}

func signIn(ctx context.Context, a *app, name string, args []string, fn func(context.Context, string, string) (client.AuthResponse, error)) error {
	username, password, err := credentials(a, name, args)
	if err != nil {
		return err
	}
	resp, err := fn(ctx, username, password)
	if err != nil {
		return err
	}
	if err := a.sync.Login(ctx, resp.User); err != nil {
		a.warn("initial pull failed: %v", err)
	}
	a.printf("signed in as %s\n", resp.User.Username)
	return nil
}

func cmdLogout(_ context.Context, a *app, _ []string) error {
	if err := a.sync.Logout(); err != nil {
		return err
	}
	a.printf("signed out, local data removed\n")
	return nil
}

func cmdStatus(_ context.Context, a *app, _ []string) error {
	if session, ok := a.client.Session(); ok {
		a.printf("signed in as %s (id %d) until %s\n", session.Username, session.UserID, session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	} else {
		a.printf("not signed in\n")
	}

	s := a.tracker.State()
	now := a.clock.Now()
	a.printf("onboarding complete: %t\n\n", s.HasCompletedOnboarding)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTIVITY\tHOURS\tSTREAK\tTODAY\tGOAL\tHIDDEN")
	for _, key := range domain.CoreActivities {
		r, _ := s.Record(key)
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%.0f\t%.0f\t%t\n", key, r.TotalHours, r.CurrentStreak, domain.TodayMinutes(*r, now), r.DailyGoalMinutes, !s.Visible(key))
	}
	for _, c := range s.ListCustomActivities() {
		fmt.Fprintf(tw, "%s (%s)\t%.1f\t%d\t%.0f\t%.0f\t-\n", c.Slug, c.Template, c.Data.TotalHours, c.Data.CurrentStreak, domain.TodayMinutes(c.Data, now), c.Data.DailyGoalMinutes)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	g := a.tracker.Game()
	a.printf("\ncustom activities: %d\nlevel %d, %d XP (%d to next), streak %d\n",
		len(s.CustomActivities), g.CurrentLevel, g.CurrentXP, gamification.XPToNextLevel(g), g.DailyStreak)
	return nil
}

func cmdShow(_ context.Context, a *app, args []string) error {
	var v any = a.tracker.State()
	if len(args) == 1 {
		switch name := args[0]; {
		case name == "gamification":
			v = a.tracker.Game()
		default:
			s := a.tracker.State()
			if r, ok := s.Record(domain.ActivityKey(name)); ok {
				v = r
			} else if c, ok := s.CustomActivities[name]; ok {
				v = c
			} else {
				return fmt.Errorf("unknown activity %q", name)
			}
		}
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	a.printf("%s\n", raw)
	return nil
}

// resolve picks the built-in or custom mutation for an activity name.
func resolve(a *app, name string, core func(domain.ActivityKey) domain.Mutation, custom func(string) domain.Mutation) (domain.Mutation, error) {
	if key := domain.ActivityKey(name); key.Valid() {
		return core(key), nil
	}
	if _, ok := a.tracker.State().CustomActivities[name]; ok {
		return custom(name), nil
	}
	return nil, fmt.Errorf("unknown activity %q", name)
}

func amountCommand(ctx context.Context, a *app, args []string, usage string,
	core func(domain.ActivityKey, float64) domain.Mutation,
	custom func(string, float64) domain.Mutation,
) error {
	if len(args) != 2 {
		return errors.New(usage)
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", args[1])
	}
	return a.mutate(ctx, func() error {
		m, err := resolve(a, args[0],
			func(k domain.ActivityKey) domain.Mutation { return core(k, amount) },
			func(slug string) domain.Mutation { return custom(slug, amount) },
		)
		if err != nil {
			return err
		}
		return a.tracker.Do(m)
	})
}

func cmdAddHours(ctx context.Context, a *app, args []string) error {
	if err := amountCommand(ctx, a, args, "usage: lifectl add-hours <activity> <hours>", domain.AddHours, domain.AddCustomHours); err != nil {
		return err
	}
	a.printf("logged %s hours on %s\n", args[1], args[0])
	return nil
}

func cmdAddMinutes(ctx context.Context, a *app, args []string) error {
	if err := amountCommand(ctx, a, args, "usage: lifectl add-minutes <activity> <minutes>", domain.AddTodayMinutes, domain.AddCustomTodayMinutes); err != nil {
		return err
	}
	a.printf("logged %s minutes on %s\n", args[1], args[0])
	return nil
}

func cmdGoal(ctx context.Context, a *app, args []string) error {
	return amountCommand(ctx, a, args, "usage: lifectl goal <activity> <minutes>", domain.SetDailyGoal, domain.SetCustomDailyGoal)
}

func visibility(ctx context.Context, a *app, args []string, fn func(domain.ActivityKey) domain.Mutation) error {
	if len(args) != 1 {
		return errors.New("expected one activity name")
	}
	return a.mutate(ctx, func() error { return a.tracker.Do(fn(domain.ActivityKey(args[0]))) })
}

func cmdHide(ctx context.Context, a *app, args []string) error {
	return visibility(ctx, a, args, domain.HideActivity)
}

func cmdRestore(ctx context.Context, a *app, args []string) error {
	return visibility(ctx, a, args, domain.RestoreActivity)
}

func cmdCreate(ctx context.Context, a *app, args []string) error {
	flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
	flags.SetOutput(a.errOut)
	template := flags.String("template", "none", "none, boxing, gym, music or language")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		return errors.New("usage: lifectl create <name> [--template t]")
	}
	name := strings.Join(flags.Args(), " ")
	var slug string
	err := a.mutate(ctx, func() error {
		var err error
		slug, err = a.tracker.CreateCustomActivity(name, domain.ParseTemplate(*template))
		return err
	})
	if err != nil {
		return err
	}
	a.printf("created %s\n", slug)
	return nil
}

func cmdDelete(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: lifectl delete <slug>")
	}
	return a.mutate(ctx, func() error { return a.tracker.Do(domain.DeleteCustomActivity(args[0])) })
}

func cmdTemplate(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		names := make([]string, 0, len(domain.TemplateNames))
		for _, n := range domain.TemplateNames {
			names = append(names, string(n))
		}
		return fmt.Errorf("usage: lifectl template <%s>", strings.Join(names, "|"))
	}
	return a.mutate(ctx, func() error {
		return a.tracker.Do(domain.Chain(
			domain.LoadTemplate(domain.TemplateName(args[0])),
			domain.CompleteOnboarding(),
		))
	})
}

func cmdXP(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: lifectl xp <activity> <amount>")
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[1])
	}
	return a.mutate(ctx, func() error {
		if err := a.tracker.Play(gamification.AddXP(args[0], amount)); err != nil {
			return err
		}
		return a.tracker.Play(gamification.UpdateStreak())
	})
}

func cmdSync(ctx context.Context, a *app, _ []string) error {
	if !a.connect(ctx) {
		return errors.New("not signed in")
	}
	if err := a.sync.SyncNow(ctx); err != nil {
		return err
	}
	a.printf("synced\n")
	return nil
}

func cmdExport(_ context.Context, a *app, args []string) error {
	raw, err := a.tracker.Activity().Export()
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		a.printf("%s\n", raw)
		return nil
	}
	if err := os.WriteFile(args[0], raw, 0o600); err != nil {
		return err
	}
	a.printf("exported to %s\n", args[0])
	return nil
}

func cmdImport(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: lifectl import <file>")
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var backup string
	err = a.mutate(ctx, func() error {
		var err error
		backup, err = a.tracker.Activity().Import(raw)
		return err
	})
	if err != nil {
		return err
	}
	if backup != "" {
		a.printf("previous data saved as %s\n", backup)
	}
	a.printf("imported %s\n", args[0])
	return nil
}
