package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
	"github.com/mrlokans/readingcenter/internal/database/users"
	"github.com/mrlokans/readingcenter/internal/entities"
)

// AdminPasswordEnv keeps the password out of shell history.
const AdminPasswordEnv = "ADMIN_PASSWORD"

type CreateAdminCommand struct {
	Username string
	Email    string
	FullName string
	Password string
	Force    bool

	Database config.Database
	Auth     config.Auth
}

func NewCreateAdminCommand(cfg *config.Config) *CreateAdminCommand {
	return &CreateAdminCommand{
		Database: cfg.Database,
		Auth:     cfg.Auth,
	}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Administrator username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Administrator email (required)")
	fs.StringVar(&cmd.FullName, "name", "", "Full name")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (defaults to $"+AdminPasswordEnv+")")
	fs.StringVar(&cmd.Database.Path, "db", cmd.Database.Path, "Path to the SQLite database file")
	fs.BoolVar(&cmd.Force, "force", false, "Create the account even if users already exist")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s=... %s create-admin -username admin -email admin@example.com\n", AdminPasswordEnv, os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-admin -username ops -email ops@example.com -password '...' -force\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Password == "" {
		cmd.Password = os.Getenv(AdminPasswordEnv)
	}

	if cmd.Username == "" || cmd.Email == "" {
		fs.Usage()
		return errors.New("username and email are required")
	}
	if cmd.Password == "" {
		return fmt.Errorf("password is required (use -password or $%s)", AdminPasswordEnv)
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	db, err := database.Open(cmd.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), cmd.Auth)
	in := auth.NewUser{
		Username: cmd.Username,
		Email:    cmd.Email,
		FullName: cmd.FullName,
		Password: cmd.Password,
		Role:     entities.UserRoleAdmin,
	}

	var user *entities.User
	if cmd.Force {
		user, err = service.CreateUser(in)
	} else {
		user, err = service.SetupFirstAdmin(in)
	}
	if errors.Is(err, auth.ErrSetupCompleted) {
		return errors.New("users already exist, pass -force to add another administrator")
	}
	if err != nil {
		return err
	}

	fmt.Printf("Created administrator %q (id %d)\n", user.Username, user.ID)
	return nil
}
