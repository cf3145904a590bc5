package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"todoapi/internal/shared/models"
)

type todosClient struct {
	serverURL *string

	page, perPage int
	description   string
	title         string
	completed     bool
}

func newTodosCmd(serverURL *string) *cobra.Command {
	c := &todosClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "todos", Short: "Manage todos"}

	list := &cobra.Command{Use: "list", Short: "List todos, newest first", Args: cobra.NoArgs, RunE: c.list}
	list.Flags().IntVar(&c.page, "page", 0, "page number (server default when 0)")
	list.Flags().IntVar(&c.perPage, "per-page", 0, "page size (server default when 0)")

	add := &cobra.Command{Use: "add <title>", Short: "Create a todo", Args: cobra.ExactArgs(1), RunE: c.add}
	add.Flags().StringVar(&c.description, "description", "", "optional description")

	update := &cobra.Command{Use: "update <id>", Short: "Update fields of a todo", Args: cobra.ExactArgs(1), RunE: c.update}
	update.Flags().StringVar(&c.title, "title", "", "new title")
	update.Flags().StringVar(&c.description, "description", "", "new description")
	update.Flags().BoolVar(&c.completed, "completed", false, "completion state")

	cmd.AddCommand(list, add, update)
	cmd.AddCommand(&cobra.Command{Use: "get <id>", Short: "Show a todo", Args: cobra.ExactArgs(1), RunE: c.get})
	cmd.AddCommand(&cobra.Command{Use: "done <id>", Short: "Mark a todo completed", Args: cobra.ExactArgs(1), RunE: c.done})
	cmd.AddCommand(&cobra.Command{Use: "delete <id>", Short: "Delete a todo", Args: cobra.ExactArgs(1), RunE: c.delete})
	return cmd
}

func (c *todosClient) api() *apiClient { return newAPIClient(*c.serverURL) }

func (c *todosClient) list(cmd *cobra.Command, _ []string) error {
	q := url.Values{}
	if c.page > 0 {
		q.Set("page", strconv.Itoa(c.page))
	}
	if c.perPage > 0 {
		q.Set("per_page", strconv.Itoa(c.perPage))
	}
	path := "/todos"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var page models.TaskPage
	if err := c.api().authed(cmd.Context(), http.MethodGet, path, nil, &page); err != nil {
		return err
	}
	return printJSON(cmd, page)
}

func (c *todosClient) add(cmd *cobra.Command, args []string) error {
	body := map[string]any{"title": args[0]}
	if cmd.Flags().Changed("description") {
		body["description"] = c.description
	}
	var task models.Task
	if err := c.api().authed(cmd.Context(), http.MethodPost, "/todos", body, &task); err != nil {
		return err
	}
	return printJSON(cmd, task)
}

func (c *todosClient) get(cmd *cobra.Command, args []string) error {
	var task models.Task
	if err := c.api().authed(cmd.Context(), http.MethodGet, "/todos/"+url.PathEscape(args[0]), nil, &task); err != nil {
		return err
	}
	return printJSON(cmd, task)
}

func (c *todosClient) update(cmd *cobra.Command, args []string) error {
	var patch models.TaskPatch
	if cmd.Flags().Changed("title") {
		patch.Title = &c.title
	}
	if cmd.Flags().Changed("description") {
		patch.Description = &c.description
	}
	if cmd.Flags().Changed("completed") {
		patch.Completed = &c.completed
	}
	if patch == (models.TaskPatch{}) {
		return errors.New("nothing to update: pass --title, --description or --completed")
	}
	return c.patch(cmd, args[0], patch)
}

func (c *todosClient) done(cmd *cobra.Command, args []string) error {
	completed := true
	return c.patch(cmd, args[0], models.TaskPatch{Completed: &completed})
}

func (c *todosClient) patch(cmd *cobra.Command, id string, patch models.TaskPatch) error {
	var task models.Task
	if err := c.api().authed(cmd.Context(), http.MethodPut, "/todos/"+url.PathEscape(id), patch, &task); err != nil {
		return err
	}
	return printJSON(cmd, task)
}

func (c *todosClient) delete(cmd *cobra.Command, args []string) error {
	if err := c.api().authed(cmd.Context(), http.MethodDelete, "/todos/"+url.PathEscape(args[0]), nil, nil); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
