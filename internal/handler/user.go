package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/bazaar-shop/internal/domain/user"
)

type registerUserRequest struct {
	Username string
	Credit   int64
}

func (req *registerUserRequest) decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			req.Username, err = d.Str()
		case "credit":
			req.Credit, err = d.Int64()
		default:
			err = d.Skip()
		}
		return err
	})
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeBody(r, req.decode); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.Username == "" {
		writeBadRequest(w, "username is required")
		return
	}
	if req.Credit < 0 {
		writeBadRequest(w, "credit must not be negative")
		return
	}

	u, err := h.users.Register(r.Context(), &user.User{
		Username: req.Username,
		Credit:   req.Credit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeUser(e, u)
	})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeUser(e, u)
	})
}
