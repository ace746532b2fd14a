package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"retail-dashboard/internal/models"
)

// FormValues is the fixed-shape payload of the transaction modal.
type FormValues struct {
	Invoice     string
	InvoiceDate string
	StockCode   string
	Description string
	Quantity    int64
	Price       float64
	CustomerID  *int64
	Country     string
}

// FormController drives the single create/edit modal. A non-empty editing
// id selects the update path on submit; the empty id selects create. The
// controller mirrors the original dashboard's module-level editing state.
type FormController struct {
	client *Client

	mu        sync.Mutex
	editingID string
	values    FormValues
}

func NewFormController(client *Client) *FormController {
	return &FormController{client: client}
}

// BeginCreate resets the modal to an empty create form.
func (f *FormController) BeginCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.editingID = ""
	f.values = FormValues{}
}

// BeginEdit prefills the modal from the matching record in the client-held
// snapshot. The record must already be in memory; there is no refetch.
func (f *FormController) BeginEdit(id string, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("dashboard: no data loaded")
	}
	for _, tx := range snap.Transactions {
		if tx.ID.String() != id {
			continue
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.editingID = id
		f.values = FormValues{
			Invoice:     tx.Invoice,
			InvoiceDate: tx.InvoiceDate.Format("2006-01-02T15:04"),
			StockCode:   tx.StockCode,
			Description: tx.Description,
			Quantity:    tx.Quantity,
			Price:       tx.Price,
			CustomerID:  tx.CustomerID,
			Country:     tx.Country,
		}
		return nil
	}
	return fmt.Errorf("dashboard: transaction %s not in current dataset", id)
}

// EditingID returns the id being edited, or "" in create mode.
func (f *FormController) EditingID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editingID
}

// Values returns the current prefill values.
func (f *FormController) Values() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Submit sends the payload: POST when no id is being edited, PUT to the
// edited id otherwise. On success the editing state is cleared; the caller
// is expected to run a full refresh.
func (f *FormController) Submit(ctx context.Context, values FormValues) error {
	f.mu.Lock()
	id := f.editingID
	f.mu.Unlock()

	input := values.payload()

	var err error
	if id == "" {
		err = f.client.CreateTransaction(ctx, input)
	} else {
		err = f.client.UpdateTransaction(ctx, id, input)
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.editingID = ""
	f.values = FormValues{}
	f.mu.Unlock()
	return nil
}

// Delete removes a record after the confirm callback approves it. A
// declined confirmation is not an error; the deletion is simply skipped.
func (f *FormController) Delete(ctx context.Context, id string, confirm func(prompt string) bool) error {
	if confirm != nil && !confirm("Delete this transaction?") {
		return nil
	}
	return f.client.DeleteTransaction(ctx, id)
}

func (v FormValues) payload() models.TransactionInput {
	input := models.TransactionInput{
		Invoice:     &v.Invoice,
		StockCode:   &v.StockCode,
		Description: &v.Description,
		Quantity:    &v.Quantity,
		Price:       &v.Price,
		Country:     &v.Country,
	}
	if v.InvoiceDate != "" {
		date := v.InvoiceDate
		if t, err := time.Parse("2006-01-02T15:04", date); err == nil {
			date = t.Format(time.RFC3339)
		}
		input.InvoiceDate = &date
	}
	if v.CustomerID != nil {
		input.CustomerID = v.CustomerID
	}
	return input
}
