/*
Package lexware_client is a client for the Lexware Office (formerly lexoffice) public REST API.

Every API resource (contacts, articles, invoices, quotations, credit notes, vouchers, files and so on)
is exposed as a sub-client of LexwareRest supporting the operations the API allows for it. Sales voucher
sub-clients add finalize, pursue, document download, deeplink and status helpers on top of the plain CRUD set.

ResourceFactory dispatches an operation named by strings ("invoice", "getAll") with a flat parameter map.
Create parameters are transformed into the API payload shape and validated before anything is sent.

Requests are rate limited per session, never retried automatically, and failures are returned as
*ApiError values classified by status code and API error code.
*/
package lexware_client
