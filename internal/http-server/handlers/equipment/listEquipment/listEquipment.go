package listEquipment

import (
	"context"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/models"
)

type EquipmentResponse struct {
	response.Response
	Equipment []models.EquipmentItem `json:"equipment"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EquipmentLister
type EquipmentLister interface {
	ListEquipment(ctx context.Context) ([]models.EquipmentItem, error)
}

func New(log *slog.Logger, lister EquipmentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.equipment.listEquipment.New"

		log := log.With(slog.String("op", op))

		items, err := lister.ListEquipment(r.Context())
		if err != nil {
			log.Error("failed to list equipment", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list equipment"))
			return
		}

		if items == nil {
			items = []models.EquipmentItem{}
		}

		render.JSON(w, r, EquipmentResponse{
			Response:  response.OK(),
			Equipment: items,
		})
	}
}
