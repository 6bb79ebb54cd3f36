package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/timeleft/tasktracker/internal/importer"
	"github.com/timeleft/tasktracker/internal/models"
	"github.com/timeleft/tasktracker/internal/repository"
	"github.com/timeleft/tasktracker/internal/service"
)

func main() {
	godotenv.Load()

	dbPath := os.Getenv("TASKTRACKER_DB")
	if dbPath == "" {
		dbPath = "./tasktracker.db"
	}

	db := repository.NewDatabase(dbPath)
	defer db.Disconnect()

	taskRepo := repository.NewTaskRepository(db)
	groupRepo := repository.NewTaskGroupRepository(db)
	svc := service.NewTaskService(taskRepo, groupRepo)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		all := fs.Bool("all", false, "include completed tasks")
		group := fs.String("group", "", "filter by group name, or 'none' for ungrouped tasks")
		fs.Parse(os.Args[2:])

		var filter *string
		switch *group {
		case "":
		case "none":
			empty := ""
			filter = &empty
		default:
			g, err := groupRepo.GetByName(*group)
			if err != nil {
				log.Fatal("Unknown group: ", err)
			}
			filter = &g.ID
		}

		tasks, err := svc.ListTasks(*all, filter)
		if err != nil {
			log.Fatal("Error listing tasks: ", err)
		}
		printTasks(tasks)

	case "groups":
		groups, err := svc.ListGroups()
		if err != nil {
			log.Fatal("Error listing groups: ", err)
		}
		for _, g := range groups {
			fmt.Printf("%-30s %s  %d task(s)\n", g.Name, g.Color, g.TaskCount)
		}

	case "overdue":
		tasks, err := taskRepo.ListOverdue()
		if err != nil {
			log.Fatal("Error listing overdue tasks: ", err)
		}
		printTasks(tasks)

	case "today":
		tasks, err := taskRepo.ListDueToday()
		if err != nil {
			log.Fatal("Error listing today's tasks: ", err)
		}
		printTasks(tasks)

	case "toggle":
		if len(os.Args) < 3 {
			log.Fatal("Usage: tasktracker toggle ID")
		}
		t, err := svc.ToggleTask(os.Args[2])
		if err != nil {
			log.Fatal("Error toggling task: ", err)
		}
		printTasks([]models.Task{*t})

	case "import":
		if len(os.Args) < 3 {
			log.Fatal("Usage: tasktracker import FILE")
		}
		data, err := os.ReadFile(os.Args[2])
		if err != nil {
			log.Fatal("Error reading import file: ", err)
		}
		n, err := importer.Import(svc, groupRepo, data)
		if err != nil {
			log.Fatal("Error importing tasks: ", err)
		}
		fmt.Printf("Imported %d task(s)\n", n)

	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Usage: tasktracker COMMAND")
	fmt.Println("Commands:")
	fmt.Println("  list [-all] [-group NAME|none]  list tasks")
	fmt.Println("  groups                          list groups with task counts")
	fmt.Println("  overdue                         list overdue tasks")
	fmt.Println("  today                           list tasks due today")
	fmt.Println("  toggle ID                       toggle task completion")
	fmt.Println("  import FILE                     import groups and tasks from YAML")
}

func printTasks(tasks []models.Task) {
	pretty := isatty.IsTerminal(os.Stdout.Fd())

	for _, t := range tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}

		due := ""
		if t.DueDate != nil {
			if pretty {
				due = "due " + humanize.Time(*t.DueDate)
			} else {
				due = "due " + t.DueDate.Format("2006-01-02")
			}
			if pretty && t.IsOverdue {
				due = "⚠ " + due
			}
		}

		group := ""
		if t.Group != nil {
			group = "#" + t.Group.Name
		}

		fmt.Printf("%s %-40s %-12s %-20s %s\n", mark, t.Title, t.Priority, due, group)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
	}
}
