// Package sales provides the read and write paths over the regional sales stores.
//
// Writes always target a single region and stamp UpdatedAt; the reconciliation
// engine carries them to the other regions. Reads can target one region or
// span all of them.
//
// # HTTP Endpoints
//
//   - GET /sales : Active sales of every region (cached, see sync.cache_ttl_seconds).
//   - GET /sales/summary : Active and deleted counts plus amount totals per region.
//   - GET /sales/:id : Newest version of a sale across regions; 404 when deleted.
//   - DELETE /sales/:id : Physically removes a sale from every region.
//   - GET /regions/:region/sales : Sales of one region (supports ?deleted=true).
//   - POST /regions/:region/sales : Creates a sale.
//   - PUT /regions/:region/sales/:id : Updates a sale.
//   - DELETE /regions/:region/sales/:id : Soft-deletes a sale.
//
// Region route parameters accept the labels and their aliases (dakar, thies,
// saint-louis, stl).
package sales
