package api

import (
	"net/http"

	"github.com/ephraimraxy/docflow/core"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) listTasks(w http.ResponseWriter, req *http.Request, ctx *context, _ httprouter.Params) error {

	// an absent state filter lists tasks in every state
	var state = core.TaskState(req.URL.Query().Get("state"))

	tasks, err := s.db.TaskDB.GetTasks(ctx.User.ID, state)
	if err != nil {
		return err
	}

	var views = make([]taskView, len(tasks))
	for i, t := range tasks {
		views[i] = newTaskView(t)
	}

	return writeJSON(w, http.StatusOK, views)
}

func (s *Server) completeTask(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	var body struct {
		Notes string `json:"notes"`
	}
	if req.ContentLength > 0 {
		if err := decodeBody(req, &body); err != nil {
			return err
		}
	}

	task, err := s.db.CompleteTask(ctx.User, params.ByName("id"), body.Notes)
	if err != nil {
		return err
	}

	ctx.audit("COMPLETE_TASK", "task", task.ID, map[string]string{"docId": task.DocID})

	return writeJSON(w, http.StatusOK, newTaskView(task))
}
