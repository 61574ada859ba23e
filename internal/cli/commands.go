package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/exams"
	"github.com/dmitrijs2005/provas/internal/models"
)

func (a *App) List(ctx context.Context, args []string) error {
	list := a.exams.ListUser()
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No exams yet. Use 'add' to create one.")
		return nil
	}
	printRecords(a.out, list)
	return nil
}

func (a *App) Catalog(ctx context.Context, args []string) error {
	list := a.exams.ListCatalog()
	if len(list) == 0 {
		if a.exams.CatalogState() == exams.StateEmpty {
			fmt.Fprintln(a.out, "Catalog not loaded yet. Try 'refresh' when online.")
		} else {
			fmt.Fprintln(a.out, "Catalog is empty.")
		}
		return nil
	}
	printRecords(a.out, list)
	return nil
}

func (a *App) Add(ctx context.Context, args []string) error {
	name, err := GetRawText(a.reader, "Exam name", a.out)
	if err != nil {
		return a.printErr(err)
	}
	date, err := GetRawText(a.reader, "Exam date", a.out)
	if err != nil {
		return a.printErr(err)
	}
	description, err := GetRawText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return a.printErr(err)
	}

	rec, err := a.exams.Create(ctx, name, date, description)
	if err != nil {
		return a.printErr(err)
	}

	fmt.Fprintf(a.out, "Added %s (%s)\n", rec.Name, rec.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter exam id to delete")
	if err != nil {
		return a.printErr(err)
	}

	if _, ok := a.exams.FindUser(id); !ok {
		if rec, ok := a.exams.FindCatalog(id); ok && !rec.Deletable() {
			fmt.Fprintln(a.out, "Catalog exams cannot be deleted.")
			return nil
		}
	}

	if err := a.exams.Delete(ctx, id); err != nil {
		return a.printErr(err)
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.idArg(args, "Enter exam id to show")
	if err != nil {
		return a.printErr(err)
	}

	rec, ok := a.exams.FindUser(id)
	if !ok {
		rec, ok = a.exams.FindCatalog(id)
	}
	if !ok {
		fmt.Fprintf(a.out, "No exam with id %s\n", id)
		return nil
	}

	printDetails(a.out, rec)
	return nil
}

func (a *App) Refresh(ctx context.Context, args []string) error {
	userDone := a.exams.RefreshInBackground(ctx, exams.CollectionUser)
	catalogDone := a.exams.RefreshInBackground(ctx, exams.CollectionCatalog)

	userErr := <-userDone
	catalogErr := <-catalogDone
	a.observeCatalog(ctx, catalogErr)

	if userErr != nil {
		a.printErr(userErr)
	}
	if catalogErr != nil {
		a.printErr(catalogErr)
	}

	fmt.Fprintf(a.out, "%d exams, %d in catalog\n", len(a.exams.ListUser()), len(a.exams.ListCatalog()))
	return errors.Join(userErr, catalogErr)
}

func (a *App) Clear(ctx context.Context, args []string) error {
	if !Confirm(a.reader, "This removes all saved exams. Continue?", a.out) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err := a.exams.ClearUser(ctx); err != nil {
		return a.printErr(err)
	}
	fmt.Fprintln(a.out, "All exams removed.")
	return nil
}

func (a *App) Notify(ctx context.Context, args []string) error {
	if len(args) == 0 {
		on, err := a.settings.Notifications(ctx)
		if err != nil {
			return a.printErr(err)
		}
		fmt.Fprintf(a.out, "Notifications: %s\n", onOff(on))
		return nil
	}

	var on bool
	switch strings.ToLower(args[0]) {
	case "on":
		on = true
	case "off":
		on = false
	default:
		fmt.Fprintln(a.out, "Usage: notify [on|off]")
		return nil
	}

	if err := a.settings.SetNotifications(ctx, on); err != nil {
		return a.printErr(err)
	}
	fmt.Fprintf(a.out, "Notifications: %s\n", onOff(on))
	return nil
}

func (a *App) idArg(args []string, prompt string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

// printErr shows err to the user in plain words and returns it.
func (a *App) printErr(err error) error {
	var msg string
	switch {
	case errors.Is(err, common.ErrValidation):
		msg = err.Error()
	case errors.Is(err, common.ErrStorageUnavailable):
		msg = "local storage is not available"
	case errors.Is(err, common.ErrMalformedData):
		msg = "saved exams could not be read; 'clear' resets them"
	case errors.Is(err, common.ErrNetwork):
		msg = "catalog unreachable, working offline"
	case errors.Is(err, common.ErrRemoteUnavailable):
		msg = "catalog refused the request"
	default:
		msg = err.Error()
	}
	fmt.Fprintln(a.out, "Error:", msg)
	return err
}

func printRecords(w io.Writer, list []models.ExamRecord) {
	for _, r := range list {
		line := fmt.Sprintf("[%s] %s - %s", r.ID, r.Name, r.Date)
		if r.Description != "" {
			line += "  " + r.Description
		}
		fmt.Fprintln(w, line)
	}
}

func printDetails(w io.Writer, r models.ExamRecord) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Date: %s\n", r.Date)
	if r.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", r.Description)
	}
	if r.StudyContent != "" {
		fmt.Fprintf(w, "Study content: %s\n", r.StudyContent)
	}
	if r.RegistrationLink != "" {
		fmt.Fprintf(w, "Registration: %s\n", r.RegistrationLink)
	}
	fmt.Fprintf(w, "Origin: %s\n", r.Origin)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
