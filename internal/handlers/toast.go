package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qrfusion/web/components/ui/toast"
)

func parseVariant(s string) toast.Variant {
	switch s {
	case "error", "destructive":
		return toast.VariantError
	case "warning":
		return toast.VariantWarning
	case "info":
		return toast.VariantInfo
	default:
		return toast.VariantSuccess
	}
}

// errorToast is the notice shown when an action could not be applied.
func errorToast(title, description string) toast.Props {
	return toast.Props{
		Title:       title,
		Description: description,
		Variant:     toast.VariantError,
		Position:    toast.PositionBottomRight,
		Duration:    4000,
		Dismissible: true,
		Icon:        true,
	}
}

// GenericToast renders a toast from form values for HTMX swaps.
func (h *Handler) GenericToast(c *gin.Context) {
	props := toast.Props{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Variant:     parseVariant(c.PostForm("variant")),
		Position:    toast.PositionBottomRight,
		Duration:    2000,
		Dismissible: c.PostForm("dismissible") == "on",
		Icon:        true,
	}
	renderHTML(c, http.StatusOK, toast.Toast(props))
}
