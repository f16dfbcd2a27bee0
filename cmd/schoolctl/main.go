package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stemsi/school-directory/internal/client"
	"github.com/stemsi/school-directory/internal/config"
	"github.com/stemsi/school-directory/internal/logger"
	"github.com/stemsi/school-directory/internal/view"
	"golang.org/x/term"
)

// formFields lists the registration prompts in form order.
var formFields = []struct {
	name   string
	prompt string
}{
	{"name", "School Name"},
	{"address", "Address"},
	{"city", "City"},
	{"state", "State"},
	{"contact", "Contact"},
	{"email_id", "Email"},
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.New(os.Stderr, cfg.LogLevel, "pretty")

	apiURL := flag.String("api", cfg.APIBaseURL, "API base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	api := client.New(*apiURL, *timeout)
	notifier := view.NewNotifier(view.NotificationTTL)
	ctx := context.Background()

	var err error
	switch args[0] {
	case "add":
		err = runAdd(ctx, api, notifier, args[1:])
	case "list":
		err = runList(ctx, api, notifier)
	case "delete":
		err = runDelete(ctx, api, notifier, args[1:])
	case "health":
		err = runHealth(ctx, api)
	default:
		printUsage()
		os.Exit(2)
	}

	if n, ok := notifier.Current(); ok {
		fmt.Println(n.Message)
	}
	if err != nil {
		log.Debug().Err(err).Str("command", args[0]).Msg("command failed")
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: schoolctl [-api URL] <command>")
	fmt.Println("Commands:")
	fmt.Println("  add [-name ... -email_id ...] -image <file>   register a school")
	fmt.Println("  list                                          show the first six schools")
	fmt.Println("  delete [-yes] <id>                            delete a school")
	fmt.Println("  health                                        check the API and its database")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// runAdd fills the registration form from flags and prompts for any text
// field left empty.
func runAdd(ctx context.Context, api *client.Client, notifier *view.Notifier, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	values := make(map[string]*string, len(formFields))
	for _, f := range formFields {
		values[f.name] = fs.String(f.name, "", f.prompt)
	}
	imagePath := fs.String("image", "", "Path to the school image")
	fs.Parse(args)

	form := view.NewRegistrationView(api, notifier)
	reader := bufio.NewReader(os.Stdin)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	fmt.Println("=== Add a New School ===")

	for _, f := range formFields {
		value := *values[f.name]
		for value == "" {
			if !interactive {
				return fmt.Errorf("-%s is required", f.name)
			}
			fmt.Printf("Enter %s: ", f.prompt)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read %s: %w", f.name, err)
			}
			value = strings.TrimRight(line, "\r\n")
		}
		if err := form.SetField(f.name, value); err != nil {
			return err
		}
	}

	if *imagePath != "" {
		data, err := os.ReadFile(*imagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		form.SelectImage(filepath.Base(*imagePath), data)
	}

	return form.Submit(ctx)
}

func runList(ctx context.Context, api *client.Client, notifier *view.Notifier) error {
	listing := view.NewListingView(api, notifier)
	err := listing.Load(ctx)
	if rerr := listing.Render(os.Stdout); rerr != nil {
		return rerr
	}
	return err
}

// runDelete asks for confirmation before deleting unless -yes is given.
func runDelete(ctx context.Context, api *client.Client, notifier *view.Notifier, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("delete requires exactly one id")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", fs.Arg(0), err)
	}

	listing := view.NewListingView(api, notifier)
	listing.RequestDelete(id)

	if !*yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			listing.CancelDelete()
			return errors.New("refusing to delete without a terminal; pass -yes")
		}
		fmt.Println("Confirm Deletion")
		fmt.Print("Are you sure you want to delete this school? This action cannot be undone. [y/N]: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			listing.CancelDelete()
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := listing.ConfirmDelete(ctx); err != nil {
		return err
	}
	return listing.Render(os.Stdout)
}

func runHealth(ctx context.Context, api *client.Client) error {
	status, err := api.Health(ctx)
	if err != nil {
		fmt.Printf("unhealthy: %v\n", err)
		return err
	}
	fmt.Printf("ok=%t db=%t\n", status.OK, status.DB)
	return nil
}
