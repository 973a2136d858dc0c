package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/wichananm65/bloom-aura/internal/config"
	"github.com/wichananm65/bloom-aura/internal/database"
	"github.com/wichananm65/bloom-aura/internal/logging"
)

func main() {
	log := logging.New("info", "text")

	app := &cli.App{
		Name:  "migrate",
		Usage: "apply or roll back the bloom-aura schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "direction", Value: "up", Usage: "up or down"},
			&cli.IntFlag{Name: "steps", Value: 0, Usage: "number of migrations to move; 0 means all"},
		},
		Action: func(c *cli.Context) error {
			return migrate(c, log)
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("migrate")
	}
}

func migrate(c *cli.Context, log logrus.FieldLogger) error {
	direction, steps := c.String("direction"), c.Int("steps")
	if steps < 0 {
		return fmt.Errorf("steps must not be negative")
	}

	dsn, err := config.DatabaseURL()
	if err != nil {
		return err
	}
	db, err := database.Open(c.Context, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = database.Steps(db, steps)
		} else {
			err = database.Migrate(db)
		}
	case "down":
		// Steps(db, 0) rolls everything back
		err = database.Steps(db, -steps)
	default:
		return fmt.Errorf("direction must be up or down, got %q", direction)
	}
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"direction": direction, "steps": steps}).Info("migrations done")
	return nil
}
