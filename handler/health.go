package handler

import "net/http"

// healthcheckHandler shows application information.
func (h *Handler) healthcheckHandler(w http.ResponseWriter, r *http.Request) {
	env := envelope{
		"status": "available",
		"system_info": map[string]string{
			"environment": h.config.Server.Env,
		},
	}
	err := h.encodeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
