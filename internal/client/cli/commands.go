package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/services"
)

var errReadOnly = errors.New("configure a wallet address (-w) to publish")

func (a *App) readCID(arg, action string) (models.CID, error) {
	if arg == "" {
		s, err := GetSimpleText(a.reader, fmt.Sprintf("Enter CID to %s", action), a.out)
		if err != nil {
			return "", err
		}
		arg = s
	}
	return models.ParseCID(arg)
}

func (a *App) readMood(def models.Mood) (models.Mood, error) {
	names := make([]string, len(models.Moods))
	for i, m := range models.Moods {
		names[i] = m.Present().Emoji + " " + string(m)
	}
	prompt := "Mood (" + strings.Join(names, ", ") + "; empty for none)"

	for {
		s, err := GetTextDefault(a.reader, prompt, string(def), a.out)
		if err != nil {
			return "", err
		}
		if m, ok := models.ParseMood(s); ok {
			return m, nil
		}
		fmt.Fprintf(a.out, "Unknown mood %q\n", s)
	}
}

// readDraft prompts for every draft field, offering prev's values as
// defaults.
func (a *App) readDraft(prev models.Entry) (services.Draft, error) {
	var d services.Draft
	var err error

	if d.Title, err = GetTextDefault(a.reader, "Title", prev.Title, a.out); err != nil {
		return d, err
	}
	if d.Mood, err = a.readMood(prev.Mood); err != nil {
		return d, err
	}
	if d.Location, err = GetTextDefault(a.reader, "Location (optional)", prev.Location, a.out); err != nil {
		return d, err
	}

	bodyPrompt := "Entry text"
	if prev.Body != "" {
		bodyPrompt = "Entry text (empty keeps the current text)"
	}
	if d.Body, err = GetMultiline(a.reader, bodyPrompt, a.out); err != nil {
		return d, err
	}
	if d.Body == "" {
		d.Body = prev.Body
	}

	if d.ShowOwner, err = GetYesNo(a.reader, "Show your wallet address?", prev.ShowOwner, a.out); err != nil {
		return d, err
	}
	if a.session.DisplayName != "" {
		if d.ShowDisplayName, err = GetYesNo(a.reader, "Show your display name?", prev.ShowDisplayName, a.out); err != nil {
			return d, err
		}
	}
	if d.ForSale, err = GetYesNo(a.reader, "Offer for sale?", prev.ForSale, a.out); err != nil {
		return d, err
	}
	if d.ForSale {
		if d.Price, err = GetFloat(a.reader, "Price", prev.Price, a.out); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (a *App) Write(ctx context.Context) error {
	if a.session.Address == "" {
		return errReadOnly
	}
	d, err := a.readDraft(models.Entry{})
	if err != nil {
		return err
	}
	cid, err := a.entryService.Publish(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Published %s\n", cid)
	return nil
}

func (a *App) Edit(ctx context.Context, arg string) error {
	if a.session.Address == "" {
		return errReadOnly
	}
	old, err := a.readCID(arg, "edit")
	if err != nil {
		return err
	}
	prev, err := a.entryService.Show(ctx, old)
	if err != nil {
		return err
	}
	d, err := a.readDraft(prev)
	if err != nil {
		return err
	}
	cid, err := a.entryService.Edit(ctx, old, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Published %s (replaces %s)\n", cid, old)
	return nil
}

func (a *App) Mine(ctx context.Context) error {
	v, err := a.entryService.Mine(ctx)
	if err != nil {
		return err
	}
	printView(a.out, v)
	return nil
}

func (a *App) Feed(ctx context.Context) error {
	printView(a.out, a.entryService.Feed(ctx))
	return nil
}

func (a *App) Show(ctx context.Context, arg string) error {
	cid, err := a.readCID(arg, "show")
	if err != nil {
		return err
	}
	e, err := a.entryService.Show(ctx, cid)
	if err != nil {
		return err
	}
	printEntry(a.out, cid, e)
	return nil
}

func (a *App) Forget(ctx context.Context, arg string) error {
	cid, err := a.readCID(arg, "forget")
	if err != nil {
		return err
	}
	if err := a.entryService.Forget(ctx, cid); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Forgot %s on this device\n", cid)
	return nil
}

func (a *App) CIDs(ctx context.Context) error {
	cids := a.entryService.CachedCIDs(ctx)
	if len(cids) == 0 {
		fmt.Fprintln(a.out, "No CIDs cached on this device.")
		return nil
	}
	for _, c := range cids {
		fmt.Fprintln(a.out, c)
	}
	return nil
}

func (a *App) Clear(ctx context.Context) error {
	ok, err := GetYesNo(a.reader, "Clear the CID cache on this device?", false, a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.entryService.ClearCache(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Local CID cache cleared.")
	return nil
}

func (a *App) Mint(ctx context.Context, arg string) error {
	cid, err := a.readCID(arg, "mint")
	if err != nil {
		return err
	}
	tx, err := a.entryService.Mint(ctx, cid)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Mint submitted: %s\n", tx)
	return nil
}
