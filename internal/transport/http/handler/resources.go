package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Resource endpoints are thin placeholders for the CRUD modules that sit
// outside the authentication core. They exist so the permission guard has
// real routes to protect.

func ListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"orders": []interface{}{}, "count": 0})
}

func UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "product " + productID + " updated"})
}
